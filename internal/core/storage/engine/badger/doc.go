// Package badger 提供基于 BadgerDB 的存储引擎实现
//
//	cfg := engine.DefaultConfig("/data/stationbus.db")
//	db, err := badger.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.Scan([]byte("sig/"), func(k, v []byte) bool {
//	    return true
//	})
package badger
