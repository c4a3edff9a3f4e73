package emulator

import "github.com/kailas-cloud/docdex/internal/domain"

// Synthetic request-charge model. The absolute numbers are arbitrary but the
// relations are the ones the tour demonstrates: writes grow with the number
// of indexed paths, indexed queries grow with matched documents, scans grow
// with every document examined.
const (
	chargeRead        = 1.0
	chargeResource    = 4.95
	chargeWriteBase   = 5.1
	chargeWritePerIdx = 0.45
	chargeQueryBase   = 2.28
	chargePerMatch    = 0.11
	chargePerScanned  = 0.02
)

// writeCharge is the cost of inserting one document under the container's
// current policy.
func writeCharge(doc map[string]any, policy *domain.IndexingPolicy) float64 {
	charge := chargeWriteBase
	for prop := range doc {
		if prop == "id" || len(prop) > 0 && prop[0] == '_' {
			continue
		}
		if policy.Indexed("/" + prop) {
			charge += chargeWritePerIdx
		}
	}
	return charge
}

// queryCharge is the cost of one query page. An equality filter on an
// indexed path is served from the index; everything else scans the examined
// documents.
func queryCharge(f filter, policy *domain.IndexingPolicy, scanned, matched int) float64 {
	if !f.all && policy.Indexed("/"+f.property) {
		return chargeQueryBase + chargePerMatch*float64(matched)
	}
	return chargeQueryBase + chargePerScanned*float64(scanned) + chargePerMatch*float64(matched)
}
