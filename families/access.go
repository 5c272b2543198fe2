package families

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/miguelfer1410/cdp-sub001/store"
)

// NormalizeEmailKey lowercases an address and strips a +suffix tag from the
// local part, so joao+filho@example.com and joao@example.com share a key.
// An address without @ normalizes to itself lowercased.
func NormalizeEmailKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	local, domain := email[:at], email[at+1:]
	if plus := strings.Index(local, "+"); plus >= 0 {
		local = local[:plus]
	}
	return local + "@" + domain
}

// SharesAliasEmail reports whether two addresses belong to the same implicit
// alias group.
func SharesAliasEmail(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return NormalizeEmailKey(a) == NormalizeEmailKey(b)
}

// CanAccess verifies ownership: a caller may read a member's billing data if
// it is their own account or the two accounts alias the same email.
func CanAccess(caller, target store.Member) bool {
	if caller.MemberId == target.MemberId {
		return true
	}
	return SharesAliasEmail(caller.Email, target.Email)
}

func (f FamilyService) CanAccess(ctx context.Context, callerId, targetId string) (bool, error) {
	if callerId == targetId {
		return true, nil
	}

	caller, err := f.Store.GetMember(nil, callerId)
	if err != nil {
		return false, errors.Wrap(err, "failed to get caller")
	}
	target, err := f.Store.GetMember(nil, targetId)
	if err != nil {
		return false, errors.Wrap(err, "failed to get target member")
	}
	return CanAccess(caller, target), nil
}

// AliasGroup is the implicit family grouping by shared email local part,
// used for admin visibility only. The fee engine never reads it.
type AliasGroup struct {
	EmailKey string         `json:"emailKey"`
	Members  []store.Member `json:"members"`
}

func (f FamilyService) ListAliasGroups(ctx context.Context) ([]AliasGroup, error) {
	members, err := f.Store.ListMembers(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list members")
	}

	byKey := map[string][]store.Member{}
	keys := []string{}
	for _, member := range members {
		if member.Email == "" {
			continue
		}
		key := NormalizeEmailKey(member.Email)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], member)
	}

	groups := []AliasGroup{}
	for _, key := range keys {
		if len(byKey[key]) < 2 {
			continue
		}
		groups = append(groups, AliasGroup{EmailKey: key, Members: byKey[key]})
	}
	return groups, nil
}
