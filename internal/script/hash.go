package script

import "github.com/djkazic/blockminer/pkg/util"

func hash160(data []byte) [20]byte {
	return util.Hash160(data)
}
