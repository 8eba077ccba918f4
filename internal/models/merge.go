package models

// Merge combines a base descriptor with an overlay at section granularity:
// every non-nil section of overlay replaces the corresponding section of
// base in the returned copy. Both inputs are left untouched; either may be
// nil.
//
// This is how descriptor fragments from independent sources (a cluster
// collector, an infrastructure attestation, a scanner import) are assembled
// into one evaluation subject.
func Merge(base, overlay *WorkloadDescriptor) *WorkloadDescriptor {
	merged := WorkloadDescriptor{}
	if base != nil {
		merged = *base
	}
	if overlay == nil {
		return &merged
	}
	if overlay.Container != nil {
		merged.Container = overlay.Container
	}
	if overlay.Pod != nil {
		merged.Pod = overlay.Pod
	}
	if overlay.NetworkPolicy != nil {
		merged.NetworkPolicy = overlay.NetworkPolicy
	}
	if overlay.Audit != nil {
		merged.Audit = overlay.Audit
	}
	if overlay.Storage != nil {
		merged.Storage = overlay.Storage
	}
	if overlay.Network != nil {
		merged.Network = overlay.Network
	}
	if overlay.SecurityScan != nil {
		merged.SecurityScan = overlay.SecurityScan
	}
	return &merged
}
