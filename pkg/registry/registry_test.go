package registry

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Category struct {
	ID   string `po:"id,primaryKey,uuid"`
	Name string `po:"name,text,notNull"`
	Slug string `po:"slug,text,unique,notNull"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         string  `po:"id,primaryKey,uuid"`
	Name       string  `po:"name,text,notNull"`
	CategoryID *string `po:"category_id,uuid,fk(categories.id),onDelete(SET NULL)"`
}

func (Product) TableName() string { return "products" }

type OtherCategory struct {
	ID string `po:"id,primaryKey,uuid"`
}

func (OtherCategory) TableName() string { return "categories" }

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	t.Run("register new model", func(t *testing.T) {
		if err := registry.Register(Category{}); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if !registry.Has(reflect.TypeOf(Category{})) {
			t.Error("expected model to be registered")
		}
	})

	t.Run("register duplicate model", func(t *testing.T) {
		if err := registry.Register(Category{}, &Category{}); err != nil {
			t.Errorf("Duplicate register failed: %v", err)
		}
		assert.Len(t, registry.All(), 1)
	})

	t.Run("register invalid type", func(t *testing.T) {
		if err := registry.Register("not a struct"); err == nil {
			t.Error("expected error for non-struct type")
		}
		if err := registry.Register(nil); err == nil {
			t.Error("expected error for nil model")
		}
	})

	t.Run("two types claiming one table", func(t *testing.T) {
		if err := registry.Register(OtherCategory{}); err == nil {
			t.Error("expected a conflict for a second type named categories")
		}
	})
}

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Category{}, Product{}))

	table, err := registry.Get(reflect.TypeOf(&Product{}))
	require.NoError(t, err)
	assert.Equal(t, "products", table.Name)

	byName, err := registry.GetByName("categories")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(Category{}), byName.GoType)

	_, err = registry.GetByName("missing")
	assert.Error(t, err)
	assert.True(t, registry.HasTable("products"))
	assert.False(t, registry.HasTable("orders"))
	assert.Len(t, registry.AllTables(), 2)
}

func TestRegistry_AllKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Category{}, Product{}))

	var names []string
	for _, table := range registry.All() {
		names = append(names, table.Name)
	}
	assert.Equal(t, []string{"categories", "products"}, names)

	registry.Clear()
	assert.Empty(t, registry.All())
}

func TestRegistry_GetOrRegister(t *testing.T) {
	registry := NewRegistry()

	table, err := registry.GetOrRegister(&Product{})
	require.NoError(t, err)
	assert.Equal(t, "products", table.Name)

	again, err := registry.GetOrRegister(Product{})
	require.NoError(t, err)
	if table != again {
		t.Error("expected the same metadata pointer on second lookup")
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			if _, err := registry.GetOrRegister(Product{}); err != nil {
				t.Errorf("GetOrRegister: %v", err)
			}
		})
	}
	wg.Wait()

	assert.Len(t, registry.All(), 1)
}
