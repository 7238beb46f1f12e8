package presence

import (
	"context"
	"fmt"

	"github.com/rplus-dev/rplus/internal/batching"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/roblox"
)

// Fetcher performs the bulk presence call. Implemented by *roblox.Client.
type Fetcher interface {
	GetUserPresences(ctx context.Context, userIDs []int64) ([]roblox.PresenceRecord, error)
}

// Processor turns a batch of user IDs into one bulk presence call.
type Processor struct {
	fetcher Fetcher
}

// NewProcessor returns a batch processor backed by fetcher.
func NewProcessor(fetcher Fetcher) *Processor {
	return &Processor{fetcher: fetcher}
}

// Process sends the unique user IDs of the batch and resolves every item.
// Users missing from the response are Offline. A failed call rejects the
// whole batch with ErrLookupFailed.
func (p *Processor) Process(ctx context.Context, items []*batching.Item[int64, UserPresence]) error {
	userIDs := make([]int64, 0, len(items))
	seen := make(map[int64]bool, len(items))
	for _, item := range items {
		if !seen[item.Key] {
			seen[item.Key] = true
			userIDs = append(userIDs, item.Key)
		}
	}

	records, err := p.fetcher.GetUserPresences(ctx, userIDs)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	byUser := make(map[int64]roblox.PresenceRecord, len(records))
	for _, record := range records {
		byUser[record.UserID] = record
	}

	for _, item := range items {
		record, ok := byUser[item.Key]
		if !ok {
			item.Resolve(UserPresence{Type: Offline})
			continue
		}
		item.Resolve(fromRecord(record))
	}

	logging.Debug("Presence: Resolved %d users (%d returned by site)", len(userIDs), len(records))
	return nil
}

func fromRecord(record roblox.PresenceRecord) UserPresence {
	t := typeFromWire(record.UserPresenceType)
	if record.PlaceID != 0 && (t == Experience || t == Studio) {
		return UserPresence{
			Type: t,
			Location: &Location{
				ID:   record.PlaceID,
				Name: locationName(t, record.LastLocation),
			},
		}
	}
	return UserPresence{Type: t}
}
