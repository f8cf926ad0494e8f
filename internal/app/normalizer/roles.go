package normalizer

import (
	"slices"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
)

// Role names as tagged by the upstream platform.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// AlternateTrainerRoles compensates for inconsistent upstream role tagging.
// It is consulted only when no user carries RoleTeacher, and the matches
// are merged into the trainer set. Downstream counts depend on this exact
// list; it is a data-quality workaround, not a general role mapping.
var AlternateTrainerRoles = []string{"editingteacher", "student", "teachers"}

// PartitionUsers splits users into trainers and trainees.
//
// Trainers are users with RoleTeacher. When there are none, users whose
// role is one of AlternateTrainerRoles are used instead, deduplicated by
// ID and ordered by ID so the result does not depend on input order.
//
// Trainees are also the RoleTeacher users (the platform trains school
// teachers, and upstream labels them this way). When that set is empty
// the RoleStudent users are used.
func PartitionUsers(users []source.User) (trainers, trainees []source.User) {
	teachers := byRole(users, RoleTeacher)

	trainers = teachers
	if len(trainers) == 0 {
		trainers = alternateTrainers(users)
	}

	trainees = teachers
	if len(trainees) == 0 {
		trainees = byRole(users, RoleStudent)
	}

	return slices.Clone(trainers), slices.Clone(trainees)
}

func byRole(users []source.User, role string) []source.User {
	out := make([]source.User, 0)
	for _, u := range users {
		if normalize.Role(u.Role) == role {
			out = append(out, u)
		}
	}
	return out
}

func alternateTrainers(users []source.User) []source.User {
	seen := make(map[string]struct{})
	out := make([]source.User, 0)
	for _, u := range users {
		if !slices.Contains(AlternateTrainerRoles, normalize.Role(u.Role)) {
			continue
		}
		id := strings.TrimSpace(u.ID)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, u)
	}
	slices.SortStableFunc(out, func(a, b source.User) int {
		return strings.Compare(strings.TrimSpace(a.ID), strings.TrimSpace(b.ID))
	})
	return out
}
