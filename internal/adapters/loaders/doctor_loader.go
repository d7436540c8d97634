package loaders

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
)

// maxConcurrentLookups bounds parallel GET /api/doctor/{id} calls in a batch
const maxConcurrentLookups = 4

// DoctorLoader batches and memoizes doctor lookups by id. The backend has no
// bulk endpoint, so a batch fans out into bounded parallel single lookups.
type DoctorLoader struct {
	loader *dataloader.Loader[string, *entities.Doctor]
}

// NewDoctorLoader creates a loader over api. One loader should live for one
// view refresh; it caches every result, including failures.
func NewDoctorLoader(api providers.DoctorAPI) *DoctorLoader {
	batch := func(ctx context.Context, keys []string) []*dataloader.Result[*entities.Doctor] {
		results := make([]*dataloader.Result[*entities.Doctor], len(keys))

		var g errgroup.Group
		g.SetLimit(maxConcurrentLookups)
		for i, key := range keys {
			g.Go(func() error {
				doctor, err := api.GetDoctor(ctx, key)
				results[i] = &dataloader.Result[*entities.Doctor]{Data: doctor, Error: err}
				return nil
			})
		}
		_ = g.Wait()
		return results
	}

	return &DoctorLoader{
		loader: dataloader.NewBatchedLoader(batch,
			dataloader.WithWait[string, *entities.Doctor](2*time.Millisecond),
		),
	}
}

// Load returns one doctor
func (l *DoctorLoader) Load(ctx context.Context, id string) (*entities.Doctor, error) {
	return l.loader.Load(ctx, id)()
}

// FillDoctorNames returns a copy of appts with DoctorName resolved wherever
// it is empty. Lookups that fail leave the name empty.
func (l *DoctorLoader) FillDoctorNames(ctx context.Context, appts []entities.Appointment) []entities.Appointment {
	var missing []string
	seen := make(map[string]struct{})
	for _, a := range appts {
		if a.DoctorName != "" || a.DoctorID == "" {
			continue
		}
		if _, ok := seen[a.DoctorID]; !ok {
			seen[a.DoctorID] = struct{}{}
			missing = append(missing, a.DoctorID)
		}
	}

	out := append([]entities.Appointment(nil), appts...)
	if len(missing) == 0 {
		return out
	}

	doctors, _ := l.loader.LoadMany(ctx, missing)()
	names := make(map[string]string, len(missing))
	for i, id := range missing {
		if i < len(doctors) && doctors[i] != nil {
			names[id] = doctors[i].FullName
		}
	}
	for i := range out {
		if out[i].DoctorName == "" {
			out[i].DoctorName = names[out[i].DoctorID]
		}
	}
	return out
}
