package repository

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Spor195/tablerointraoperatorio/internal/metrics"
	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

var (
	seedServices  = []string{"General Surgery", "Gynecology", "Head and Neck", "Trauma"}
	seedSurgeons  = []string{"Dr. A", "Dr. B", "Dr. C"}
	seedSpecimens = []string{"Sentinel node", "Breast margin", "Thyroid lobe", "Colon segment"}
)

// SeedDemo inserts a handful of completed example cases spread over the last
// hour, for demos and smoke checks. Returns how many rows were added.
func (r *CaseRepository) SeedDemo(ctx context.Context, loc *time.Location) (int, error) {
	now := time.Now().In(loc).Truncate(time.Minute)
	day := now.Format("20060102")

	offsets := []int{5, 12, 18, 22, 27, 31, 40, 55}
	for i, off := range offsets {
		received := now.Add(-time.Duration(off+20) * time.Minute)
		diagnosed := received.Add(time.Duration(8+rand.Intn(10)) * time.Minute)
		communicated := diagnosed.Add(time.Duration(1+rand.Intn(7)) * time.Minute)

		c := &model.Case{
			CaseCode:       fmt.Sprintf("IO-%s-%d", day, 100+i),
			MedicalRecord:  fmt.Sprintf("MR%d", 3000+i),
			Patient:        fmt.Sprintf("P%d", i+1),
			Service:        seedServices[rand.Intn(len(seedServices))],
			Surgeon:        seedSurgeons[rand.Intn(len(seedSurgeons))],
			Specimen:       seedSpecimens[rand.Intn(len(seedSpecimens))],
			Status:         model.StatusReported,
			IntakeAt:       metrics.FormatStamp(received.Add(-5 * time.Minute)),
			ReceivedAt:     metrics.FormatStamp(received),
			CryostatAt:     metrics.FormatStamp(received.Add(5 * time.Minute)),
			DiagnosedAt:    metrics.FormatStamp(diagnosed),
			CommunicatedAt: metrics.FormatStamp(communicated),
			Notes:          "demo",
		}
		if err := r.Create(ctx, c); err != nil {
			return i, err
		}
	}

	return len(offsets), nil
}
