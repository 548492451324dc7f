package storage

import "os"

// DiskUsageBytes returns the combined size in bytes of the vault index file
// and its WAL/shm siblings. Missing files contribute 0.
func DiskUsageBytes(dbPath string) (int64, error) {
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, err
		}
		if !info.IsDir() {
			total += info.Size()
		}
	}
	return total, nil
}
