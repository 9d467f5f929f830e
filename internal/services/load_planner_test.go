package services

import (
	"delivery-dispatch-service/internal/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadOf(loads [][]int, id int) int {
	for i, l := range loads {
		for _, got := range l {
			if got == id {
				return i + 1
			}
		}
	}
	return 0
}

func TestLoadPlannerNotePlacements(t *testing.T) {
	pkgs := []*domain.Package{
		newPackage(t, 1, 1, domain.EndOfDay, "Can only be on truck 2"),
		newPackage(t, 2, 2, domain.EndOfDay, "Wrong address listed"),
		newPackage(t, 3, 3, domain.Clock(10, 30), "Must be delivered with 4, 5"),
		newPackage(t, 4, 4, domain.EndOfDay, ""),
		newPackage(t, 5, 5, domain.EndOfDay, ""),
		newPackage(t, 6, 6, domain.EndOfDay, "Delayed on flight---will not arrive to depot until 8:45 am"),
		newPackage(t, 7, 1, domain.EndOfDay, "Delayed on flight---will not arrive to depot until 9:05 am"),
		newPackage(t, 8, 2, domain.EndOfDay, "Delayed on flight---will not arrive to depot until 10:20 am"),
	}

	loads, err := NewLoadPlanner(3, 16).Plan(pkgs)
	require.NoError(t, err)
	require.Len(t, loads, 3)

	assert.Equal(t, 2, loadOf(loads, 1), "on truck 2")
	assert.Equal(t, 3, loadOf(loads, 2), "wrong address")
	assert.Equal(t, 1, loadOf(loads, 3), "group leader")
	assert.Equal(t, 1, loadOf(loads, 4), "group member")
	assert.Equal(t, 1, loadOf(loads, 5), "group member")
	assert.Equal(t, 1, loadOf(loads, 6), "delayed before 09:00")
	assert.Equal(t, 2, loadOf(loads, 7), "delayed before 10:20")
	assert.Equal(t, 3, loadOf(loads, 8), "delayed at 10:20")
}

func TestLoadPlannerDeadlineLocality(t *testing.T) {
	pkgs := []*domain.Package{
		newPackage(t, 1, 4, domain.EndOfDay, "Can only be on truck 3"),
		// Shares a stop with package 1, so it follows it onto load 3.
		newPackage(t, 2, 4, domain.Clock(10, 30), ""),
		// No matching load: forced onto load 1.
		newPackage(t, 3, 5, domain.Clock(9, 0), ""),
	}

	loads, err := NewLoadPlanner(3, 16).Plan(pkgs)
	require.NoError(t, err)

	assert.Equal(t, 3, loadOf(loads, 2))
	assert.Equal(t, 1, loadOf(loads, 3))
}

func TestLoadPlannerAffinityAndBalance(t *testing.T) {
	pkgs := []*domain.Package{
		newPackage(t, 1, 1, domain.EndOfDay, "Can only be on truck 2"),
		// Same street and zip as package 1.
		newPackage(t, 2, 1, domain.EndOfDay, ""),
		// Unrelated stops fill the lightest load, lowest number first.
		newPackage(t, 3, 2, domain.EndOfDay, ""),
		newPackage(t, 4, 3, domain.EndOfDay, ""),
		newPackage(t, 5, 5, domain.EndOfDay, ""),
	}

	loads, err := NewLoadPlanner(3, 16).Plan(pkgs)
	require.NoError(t, err)

	assert.Equal(t, 2, loadOf(loads, 2))
	assert.Equal(t, 1, loadOf(loads, 3))
	assert.Equal(t, 3, loadOf(loads, 4))
	assert.Equal(t, 1, loadOf(loads, 5))
}

func TestLoadPlannerNeverExceedsCapacity(t *testing.T) {
	var pkgs []*domain.Package
	for id := 1; id <= 40; id++ {
		deadline := domain.EndOfDay
		if id%5 == 0 {
			deadline = domain.Clock(10, 30)
		}
		pkgs = append(pkgs, newPackage(t, id, id%6+1, deadline, ""))
	}
	pkgs[12].Notes = "Must be delivered with 15, 19"
	pkgs[12].Note = domain.Note{Kind: domain.NoteDeliveredWith, With: []int{15, 19}, Until: domain.NotYet}

	loads, err := NewLoadPlanner(3, 16).Plan(pkgs)
	require.NoError(t, err)

	seen := map[int]bool{}
	for i, l := range loads {
		assert.LessOrEqualf(t, len(l), 16, "load %d", i+1)
		for _, id := range l {
			assert.Falsef(t, seen[id], "package %d placed twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 40)
	assert.Equal(t, loadOf(loads, 13), loadOf(loads, 15))
	assert.Equal(t, loadOf(loads, 13), loadOf(loads, 19))
}

func TestLoadPlannerCapacityExceeded(t *testing.T) {
	var pkgs []*domain.Package
	for id := 1; id <= 7; id++ {
		pkgs = append(pkgs, newPackage(t, id, id%6+1, domain.EndOfDay, ""))
	}

	_, err := NewLoadPlanner(3, 2).Plan(pkgs)
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestLoadPlannerGroupFollowsPinnedMember(t *testing.T) {
	pkgs := []*domain.Package{
		newPackage(t, 1, 1, domain.Clock(9, 0), "Must be delivered with 2"),
		newPackage(t, 2, 2, domain.EndOfDay, "Can only be on truck 2"),
	}

	loads, err := NewLoadPlanner(3, 16).Plan(pkgs)
	require.NoError(t, err)
	assert.Equal(t, 2, loadOf(loads, 1))
	assert.Equal(t, 2, loadOf(loads, 2))
	assert.Empty(t, loads[0])
}

func TestLoadPlannerRejectsBadNotes(t *testing.T) {
	t.Run("unknown group member", func(t *testing.T) {
		pkgs := []*domain.Package{newPackage(t, 1, 1, domain.EndOfDay, "Must be delivered with 99")}
		_, err := NewLoadPlanner(3, 16).Plan(pkgs)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("group pinned to two trucks", func(t *testing.T) {
		pkgs := []*domain.Package{
			newPackage(t, 1, 1, domain.EndOfDay, "Can only be on truck 1"),
			newPackage(t, 2, 2, domain.EndOfDay, "Can only be on truck 2"),
			newPackage(t, 3, 3, domain.EndOfDay, "Must be delivered with 1, 2"),
		}
		_, err := NewLoadPlanner(3, 16).Plan(pkgs)
		require.ErrorIs(t, err, domain.ErrInvalidNote)
	})

	t.Run("truck outside fleet", func(t *testing.T) {
		pkgs := []*domain.Package{newPackage(t, 1, 1, domain.EndOfDay, "Can only be on truck 4")}
		_, err := NewLoadPlanner(3, 16).Plan(pkgs)
		require.ErrorIs(t, err, domain.ErrInvalidNote)
	})
}
