//go:build !linux && !darwin

package preflight

// CheckDiskSpace is not measured on this platform.
func (c *Checker) CheckDiskSpace(_ string) CheckResult {
	return CheckResult{
		Name:    "disk_space",
		Status:  StatusWarn,
		Message: "not checked on this platform",
	}
}
