package memory

import (
	"time"

	"studenthub-be/internal/entity"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ProfileCache keeps recently resolved user profiles in memory so the auth
// middleware does not hit the database on every request for role lookups.
type ProfileCache struct {
	cache *cache.Cache
}

func NewProfileCache() *ProfileCache {
	// Profiles rarely change; 5 minute TTL bounds role-change staleness,
	// purging expired entries every 10 minutes.
	c := cache.New(5*time.Minute, 10*time.Minute)
	return &ProfileCache{
		cache: c,
	}
}

func (r *ProfileCache) Save(user *entity.User) {
	r.cache.Set(user.Id.String(), user, cache.DefaultExpiration)
}

func (r *ProfileCache) Get(userID uuid.UUID) (*entity.User, bool) {
	if x, found := r.cache.Get(userID.String()); found {
		return x.(*entity.User), true
	}
	return nil, false
}

func (r *ProfileCache) Invalidate(userID uuid.UUID) {
	r.cache.Delete(userID.String())
}
