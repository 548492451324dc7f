package models

// VaultStatus summarizes the vault index for the status command.
type VaultStatus struct {
	DatabasePath string `json:"database_path"`
	Notes        int64  `json:"notes"`
	Chunks       int64  `json:"chunks"`
	Dimensions   int    `json:"dimensions"`
	DiskBytes    int64  `json:"disk_bytes"`
}
