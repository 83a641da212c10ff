package service

import (
	"context"
	"sync"

	"boatyard_backend/internal/repairs/domain"
	"boatyard_backend/internal/repairs/ports"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// partyLookupLimit caps concurrent user lookups when hydrating listings.
const partyLookupLimit = 8

// Parties resolves the distinct customers and technicians referenced by the
// given requests. Lookups run concurrently and best-effort: a failed lookup
// is logged and simply absent from the result.
func (s *Service) Parties(ctx context.Context, reqs []domain.RepairRequest) map[uuid.UUID]ports.UserInfo {
	ids := make(map[uuid.UUID]struct{})
	for _, req := range reqs {
		ids[req.CustomerID] = struct{}{}
		if req.AssignedTechnicianID != nil {
			ids[*req.AssignedTechnicianID] = struct{}{}
		}
	}

	var mu sync.Mutex
	out := make(map[uuid.UUID]ports.UserInfo, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(partyLookupLimit)
	for id := range ids {
		userID := id
		g.Go(func() error {
			info, err := s.users.GetUserInfo(ctx, userID)
			if err != nil {
				s.log.UpstreamFailure("auth", "resolve user", err)
				return nil
			}
			mu.Lock()
			out[userID] = info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}
