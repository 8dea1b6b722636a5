/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"testing"

	"github.com/suparena/persistence/datastore"
	"github.com/suparena/persistence/datastore/mock"
	"github.com/suparena/persistence/errors"
)

type TestEntity struct {
	ID   int
	Name string
}

func (e *TestEntity) GetID() int   { return e.ID }
func (e *TestEntity) SetID(id int) { e.ID = id }

var _ datastore.DataStore[*TestEntity] = (*mock.DataStore[*TestEntity])(nil)

func TestMockDataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		mockStore := mock.New(&TestEntity{ID: 1, Name: "Seed"})

		loaded, err := mockStore.Load(ctx)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if len(loaded) != 1 || loaded[0].Name != "Seed" {
			t.Fatalf("Loaded entities mismatch: %+v", loaded)
		}

		n, err := mockStore.Save(ctx, []*TestEntity{{ID: 2, Name: "A"}, {ID: 3, Name: "B"}})
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if n != 2 || mockStore.Count() != 2 {
			t.Fatalf("Expected 2 saved entities, got n=%d count=%d", n, mockStore.Count())
		}

		if mockStore.LoadCalls() != 1 || mockStore.SaveCalls() != 1 {
			t.Fatalf("Unexpected call counts: loads=%d saves=%d", mockStore.LoadCalls(), mockStore.SaveCalls())
		}
	})

	t.Run("SaveNil", func(t *testing.T) {
		mockStore := mock.New[*TestEntity]()

		_, err := mockStore.Save(ctx, nil)
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
		if mockStore.SaveCalls() != 0 {
			t.Fatalf("Rejected save must not be counted")
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		mockStore := mock.New[*TestEntity]()

		loadErr := errors.NewStorageError("load", errors.KindConnectivity, context.DeadlineExceeded)
		mockStore.WithLoadError(loadErr)
		if _, err := mockStore.Load(ctx); err != loadErr {
			t.Fatalf("Expected load error, got: %v", err)
		}

		saveErr := errors.NewStorageError("save", errors.KindUniqueViolation, nil)
		mockStore.WithSaveError(saveErr)
		if _, err := mockStore.Save(ctx, []*TestEntity{}); err != saveErr {
			t.Fatalf("Expected save error, got: %v", err)
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		mockStore := mock.New[*TestEntity]()
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		if _, err := mockStore.Load(canceled); errors.KindOf(err) != errors.KindCanceled {
			t.Fatalf("Expected canceled error, got: %v", err)
		}
	})

	t.Run("CustomFuncs", func(t *testing.T) {
		var saved []*TestEntity
		mockStore := mock.New[*TestEntity]().
			WithLoadFunc(func(ctx context.Context) ([]*TestEntity, error) {
				return []*TestEntity{{ID: 42}}, nil
			}).
			WithSaveFunc(func(ctx context.Context, entities []*TestEntity) (int, error) {
				saved = entities
				return len(entities), nil
			})

		loaded, _ := mockStore.Load(ctx)
		if len(loaded) != 1 || loaded[0].ID != 42 {
			t.Fatalf("Custom load not used: %+v", loaded)
		}
		if _, err := mockStore.Save(ctx, []*TestEntity{{ID: 7}}); err != nil || len(saved) != 1 {
			t.Fatalf("Custom save not used: %v", err)
		}
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		mockStore := mock.New[*TestEntity]()
		input := []*TestEntity{{ID: 1}}
		_, _ = mockStore.Save(ctx, input)
		input[0] = &TestEntity{ID: 99}

		if got := mockStore.GetData(); got[0].ID != 1 {
			t.Fatalf("Save must copy the slice, got id %d", got[0].ID)
		}
		mockStore.Clear()
		if mockStore.Count() != 0 {
			t.Fatalf("Clear left %d entities", mockStore.Count())
		}
	})
}
