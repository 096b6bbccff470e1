package resolver

import (
	"github.com/hanpama/membergraph/internal/loader"
	"github.com/hanpama/membergraph/internal/model"
)

func memberTypeKey(mt *model.MemberType) model.MemberTypeID { return mt.ID }

func profileOwner(p *model.Profile) string { return p.UserID }

// primeUsers primes the user cache with users. For users whose profile was
// embedded it also primes the profile cache, recording a missing profile
// as nil.
func primeUsers(l *loader.Loaders, users []*model.User) {
	l.PrimeUsers(users...)
	for _, u := range users {
		if p, err := u.Edges.ProfileOrErr(); err == nil {
			l.ProfileByUserID.Prime(u.ID, p)
		}
	}
}
