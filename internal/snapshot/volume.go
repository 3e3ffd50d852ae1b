package snapshot

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	mfs "github.com/CageChen/filehub/internal/fs"
)

// StorageUnavailable is the summary text used when volume statistics cannot be read.
const StorageUnavailable = "Storage info unavailable"

// ErrNoVolume is returned for filesystems that are not backed by a volume.
var ErrNoVolume = errors.New("volume statistics not available")

// VolumeStats describes the capacity of a volume. Used is Total minus Free.
type VolumeStats struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// Volume queries block statistics of the volume holding path.
func Volume(fsys mfs.FileSystem, path string) (VolumeStats, error) {
	vr, ok := fsys.(mfs.VolumeReader)
	if !ok {
		return VolumeStats{}, ErrNoVolume
	}
	info, err := vr.Volume(path)
	if err != nil {
		return VolumeStats{}, fmt.Errorf("stat volume of %q: %w", path, err)
	}
	return statsFromBlocks(info), nil
}

func statsFromBlocks(info mfs.VolumeInfo) VolumeStats {
	total := mulSaturating(info.BlockSize, info.Blocks)
	free := mulSaturating(info.BlockSize, info.AvailableBlocks)
	if free > total {
		free = total
	}
	return VolumeStats{Total: total, Used: total - free, Free: free}
}

func mulSaturating(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}

// Summary renders the three-line capacity text.
func (v VolumeStats) Summary() string {
	return "Total: " + formatUnsigned(v.Total) +
		"\nUsed: " + formatUnsigned(v.Used) +
		"\nFree: " + formatUnsigned(v.Free)
}

// StorageSummary returns the capacity text for the volume holding path,
// or StorageUnavailable when it cannot be determined.
func StorageSummary(fsys mfs.FileSystem, path string) string {
	v, err := Volume(fsys, path)
	if err != nil {
		return StorageUnavailable
	}
	return v.Summary()
}
