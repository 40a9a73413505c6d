package vidshare

import (
	"sync"

	"github.com/sqids/sqids-go"
)

var (
	sq   *sqids.Sqids
	once sync.Once
)

func getSqids() *sqids.Sqids {
	once.Do(func() {
		var err error
		sq, err = sqids.New(sqids.Options{
			Alphabet:  "mUTKkz29DvxodGRwSVjf0LeBEJg6niactOXWY7l1ZbshIypMACHur5QF43q8NP",
			MinLength: 8,
		})
		if err != nil {
			panic("sqids init failed: " + err.Error())
		}
	})
	return sq
}

// EncodeCode mints the public share code for a link's database id.
func EncodeCode(id uint64) (string, error) {
	return getSqids().Encode([]uint64{id})
}
