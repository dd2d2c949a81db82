package workflow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type counterAction struct{ delta int }

func TestStore_DispatchIsSerial(t *testing.T) {
	store := NewStore[int, counterAction](0, func(state int, action counterAction) int {
		return state + action.delta
	})

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Dispatch(counterAction{delta: 1})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, store.State())
}

func TestReduceAdmin_MenuSnapshotsAreIndependent(t *testing.T) {
	state := InitialAdminState()
	first := reduceAdmin(state, MenuItemAdded{Item: testItem("Scone", "2.5")})
	second := reduceAdmin(first, MenuItemAdded{Item: testItem("Espresso", "2")})
	third := reduceAdmin(second, MenuItemRemoved{ItemID: "scone"})

	assert.Len(t, first.Menu, 1)
	assert.Len(t, second.Menu, 2)
	assert.Len(t, third.Menu, 1)
	assert.Equal(t, "espresso", third.Menu[0].ID)
	assert.Equal(t, uint64(3), third.MenuVersion)
}

func TestReduceAdmin_ClearKeepsMenuVersion(t *testing.T) {
	state := reduceAdmin(InitialAdminState(), MenuItemAdded{Item: testItem("Scone", "2.5")})
	state.Status = Connected

	cleared := reduceAdmin(state, StateCleared{})

	assert.Equal(t, Disconnected, cleared.Status)
	assert.Empty(t, cleared.Menu)
	assert.Equal(t, uint64(1), cleared.MenuVersion)
}

func TestReduceAdmin_InvalidTaxRateIsDropped(t *testing.T) {
	rate := "ten percent"
	display := false

	state := reduceAdmin(InitialAdminState(), SettingsUpdated{Patch: SettingsPatch{TaxRate: &rate, TaxDisplay: &display}})

	assert.True(t, state.Settings.TaxRate.IsZero())
	assert.False(t, state.Settings.TaxDisplay)
}

func TestReduceOrder_LockedCartIgnoresEdits(t *testing.T) {
	state := InitialOrderState()
	state.Phase = PhaseSubmitted
	state.Items = nil

	next := reduceOrder(state, ItemAdded{Item: testItem("Scone", "2.5")})

	assert.Empty(t, next.Items)
}

func TestReduceOrder_UnsubmitIsIdempotentWhileBrowsing(t *testing.T) {
	state := InitialOrderState()
	state.Phase = PhaseBrowsing
	state = reduceOrder(state, ItemAdded{Item: testItem("Scone", "2.5")})

	once := reduceOrder(state, Unsubmitted{})
	twice := reduceOrder(once, Unsubmitted{})

	assert.Equal(t, once, twice)
	assert.Len(t, twice.Items, 1)
}
