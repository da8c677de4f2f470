package scan

import (
	"time"

	"github.com/vbonduro/snapcal/internal/domain"
)

// Observer receives progress of a scan. LookupFinished is called from
// concurrent goroutines; implementations must be safe for concurrent use.
type Observer interface {
	ScanStarted()
	ItemsIdentified(n int)
	LookupFinished(item domain.IdentifiedFoodItem, err error)
	ScanFinished(result *domain.ScanResult, err error, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ScanStarted()                                          {}
func (nopObserver) ItemsIdentified(int)                                   {}
func (nopObserver) LookupFinished(domain.IdentifiedFoodItem, error)       {}
func (nopObserver) ScanFinished(*domain.ScanResult, error, time.Duration) {}
