package diskreport

import (
	"fmt"
	"syscall"
)

// Capacity describes the filesystem holding the scanned root. The
// numbers cover the whole filesystem, not the scanned subtree.
type Capacity struct {
	// TotalBytes is the filesystem size.
	TotalBytes int64 `json:"total_bytes"`
	// UsedBytes is TotalBytes minus the space available to unprivileged users.
	UsedBytes int64 `json:"used_bytes"`
	// FreeBytes is the space available to unprivileged users.
	FreeBytes int64 `json:"free_bytes"`
}

// FreePercent returns free space as a percentage of the filesystem size.
func (c Capacity) FreePercent() float64 {
	if c.TotalBytes == 0 {
		return 0
	}

	return 100.0 * float64(c.FreeBytes) / float64(c.TotalBytes)
}

// ReadCapacity reports the capacity of the filesystem containing path.
// Statfs is Unix-specific.
func ReadCapacity(path string) (*Capacity, error) {
	var stat syscall.Statfs_t

	if err := syscall.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("statfs %q: %w", path, err)
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)

	return &Capacity{
		TotalBytes: total,
		UsedBytes:  total - free,
		FreeBytes:  free,
	}, nil
}
