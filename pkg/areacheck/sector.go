package areacheck

import "golang.org/x/exp/constraints"

const SectorSize = 4096

func SectorCeil[T constraints.Integer](size T) T {
	sectorSize := uint64(SectorSize)
	sector := T(sectorSize)
	if size%sector == 0 {
		return size
	}
	return (size/sector + 1) * sector
}
