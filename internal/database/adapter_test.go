package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cts/internal/testutil"
)

// backends returns a connected adapter of every kind for collection.
func backends(t *testing.T, collection string) map[string]Adapter {
	t.Helper()
	ctx := context.Background()

	out := map[string]Adapter{
		"memory": NewMemory(collection, testutil.NewFixedIDGenerator("doc")),
		"sqlite": NewSQLite(filepath.Join(t.TempDir(), "test.db"), collection, testutil.NewFixedIDGenerator("doc")),
	}
	for name, a := range out {
		require.NoError(t, a.Connect(ctx), name)
		t.Cleanup(func() { a.Close() })
	}
	return out
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		adapter string
		opts    Options
		want    any
		code    ErrorCode
	}{
		{name: "memory", adapter: "memory", want: &Memory{}},
		{name: "memory long name", adapter: "DatabaseAdapterMemory", want: &Memory{}},
		{name: "sqlite", adapter: "sqlite", opts: Options{Path: filepath.Join(dir, "a.db")}, want: &SQLite{}},
		{name: "sqlite long name", adapter: "DatabaseAdapterSQLite", opts: Options{Path: filepath.Join(dir, "b.db")}, want: &SQLite{}},
		{name: "sqlite without path", adapter: "sqlite", code: ErrCodeInvalidArgument},
		{name: "unknown", adapter: "mongo", code: ErrCodeUnknownAdapter},
		{name: "empty", adapter: "", code: ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Init(tt.adapter, "people", tt.opts)
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, HasCode(err, tt.code), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, a)
			assert.Equal(t, "people", a.Collection())
		})
	}
}

func TestInit_EmptyCollection(t *testing.T) {
	_, err := Init("memory", "", Options{})
	assert.True(t, HasCode(err, ErrCodeInvalidArgument))
}

func TestInit_DefaultIDsAreUUIDs(t *testing.T) {
	ctx := context.Background()
	a, err := Init("memory", "people", Options{})
	require.NoError(t, err)
	require.NoError(t, a.Connect(ctx))

	id, err := a.AddItem(ctx, "", Document{"name": "x"}, ConflictError)
	require.NoError(t, err)
	assert.True(t, IsUUID(id), "id %q", id)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("a342bdef-8319-20de-bf23-291c23180a1d"))
	assert.True(t, IsUUID(UUIDv7Generator{}.Generate()))
	assert.False(t, IsUUID(""))
	assert.False(t, IsUUID("a342bdef831920debf23291c23180a1d"))
	assert.False(t, IsUUID("zzzzzzzz-8319-20de-bf23-291c23180a1d"))
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	for name, a := range map[string]Adapter{
		"memory": NewMemory("people", nil),
		"sqlite": NewSQLite(filepath.Join(t.TempDir(), "x.db"), "people", nil),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.CheckItem(ctx, "1")
			assert.True(t, HasCode(err, ErrCodeNotConnected), "got %v", err)

			_, err = a.AddItem(ctx, "1", Document{}, ConflictError)
			assert.True(t, HasCode(err, ErrCodeNotConnected), "got %v", err)
		})
	}
}

func TestAdapter_ConnectTwice(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, a.Connect(ctx))
			_, err := a.CountItems(ctx, nil)
			require.NoError(t, err)
		})
	}
}

func TestAdapter_AddGetCheck(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			id, err := a.AddItem(ctx, "1", Document{"firstname": "Ada", "id": "ignored"}, ConflictError)
			require.NoError(t, err)
			assert.Equal(t, "1", id)

			ok, err := a.CheckItem(ctx, "1")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = a.CheckItem(ctx, "2")
			require.NoError(t, err)
			assert.False(t, ok)

			doc, found, err := a.GetItem(ctx, "1")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, Document{"id": "1", "firstname": "Ada"}, doc)

			_, found, err = a.GetItem(ctx, "2")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestAdapter_AddGeneratesID(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			first, err := a.AddItem(ctx, "", Document{"n": 1}, ConflictError)
			require.NoError(t, err)
			second, err := a.AddItem(ctx, "", Document{"n": 2}, ConflictError)
			require.NoError(t, err)

			assert.Equal(t, "doc-0001", first)
			assert.Equal(t, "doc-0002", second)
		})
	}
}

func TestAdapter_AddConflicts(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			_, err := a.AddItem(ctx, "1", Document{"v": "a"}, ConflictError)
			require.NoError(t, err)

			_, err = a.AddItem(ctx, "1", Document{"v": "b"}, ConflictError)
			assert.True(t, IsIDInUse(err), "got %v", err)

			id, err := a.AddItem(ctx, "1", Document{"v": "c"}, ConflictSkip)
			require.NoError(t, err)
			assert.Empty(t, id)

			doc, _, err := a.GetItem(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "a", doc["v"])

			id, err = a.AddItem(ctx, "1", Document{"v": "d"}, ConflictIgnore)
			require.NoError(t, err)
			assert.Equal(t, "1", id)

			doc, _, err = a.GetItem(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "d", doc["v"])
		})
	}
}

func TestAdapter_UpdateItem(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			_, err := a.UpdateItem(ctx, "1", Document{"v": "a"}, ConflictError)
			assert.True(t, IsNotFound(err), "got %v", err)

			ok, err := a.UpdateItem(ctx, "1", Document{"v": "a"}, ConflictSkip)
			require.NoError(t, err)
			assert.False(t, ok)

			ok, err = a.UpdateItem(ctx, "1", Document{"v": "b"}, ConflictIgnore)
			require.NoError(t, err)
			assert.True(t, ok, "ignore mode inserts missing documents")

			ok, err = a.UpdateItem(ctx, "1", Document{"v": "c"}, ConflictError)
			require.NoError(t, err)
			assert.True(t, ok)

			doc, _, err := a.GetItem(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, Document{"id": "1", "v": "c"}, doc)
		})
	}
}

func TestAdapter_RemoveItem(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			_, err := a.AddItem(ctx, "1", Document{}, ConflictError)
			require.NoError(t, err)

			ok, err := a.RemoveItem(ctx, "1", ConflictError)
			require.NoError(t, err)
			assert.True(t, ok)

			_, err = a.RemoveItem(ctx, "1", ConflictError)
			assert.True(t, IsNotFound(err), "got %v", err)

			ok, err = a.RemoveItem(ctx, "1", ConflictSkip)
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = a.RemoveItem(ctx, "1", ConflictIgnore)
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)
		})
	}
}

func TestAdapter_FindItems(t *testing.T) {
	ctx := context.Background()
	people := []struct {
		id    string
		first string
		reply string
	}{
		{"3", "Carla", "yes"},
		{"1", "Ada", "no"},
		{"2", "Bo", "yes"},
		{"4", "Dan", "yes"},
	}

	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			for _, p := range people {
				_, err := a.AddItem(ctx, p.id, Document{"firstname": p.first, "attending": p.reply}, ConflictError)
				require.NoError(t, err)
			}

			all, err := a.FindItems(ctx, nil, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"3", "1", "2", "4"}, ids(all), "insertion order")

			yes, err := a.FindItems(ctx, Document{"attending": "yes"}, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"3", "2", "4"}, ids(yes))

			page, err := a.FindItems(ctx, Document{"attending": "yes"}, 1, 1)
			require.NoError(t, err)
			assert.Equal(t, []string{"2"}, ids(page))

			byID, err := a.FindItems(ctx, Document{"id": "1"}, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"1"}, ids(byID))

			none, err := a.FindItems(ctx, Document{"attending": "maybe"}, 0, 0)
			require.NoError(t, err)
			assert.Empty(t, none)
			assert.NotNil(t, none)

			n, err := a.CountItems(ctx, Document{"attending": "yes"})
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			n, err = a.CountItems(ctx, nil)
			require.NoError(t, err)
			assert.Equal(t, 4, n)
		})
	}
}

func TestAdapter_FindItems_NumbersAndBooleans(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			_, err := a.AddItem(ctx, "1", Document{"age": 30, "vip": true}, ConflictError)
			require.NoError(t, err)
			_, err = a.AddItem(ctx, "2", Document{"age": 31, "vip": false}, ConflictError)
			require.NoError(t, err)

			found, err := a.FindItems(ctx, Document{"age": 30}, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"1"}, ids(found))

			found, err = a.FindItems(ctx, Document{"vip": false}, 0, 0)
			require.NoError(t, err)
			assert.Equal(t, []string{"2"}, ids(found))
		})
	}
}

func TestAdapter_InvalidArguments(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			_, err := a.FindItems(ctx, Document{"bad key": 1}, 0, 0)
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)

			_, err = a.FindItems(ctx, nil, -1, 0)
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)

			_, _, err = a.GetItem(ctx, "")
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)

			_, err = a.AddItem(ctx, "1", nil, ConflictError)
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)

			_, err = a.AddItem(ctx, "1", Document{}, ConflictMode("merge"))
			assert.True(t, HasCode(err, ErrCodeInvalidArgument), "got %v", err)
		})
	}
}

func TestAdapter_Revision(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			rev, err := a.Revision(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(0), rev)

			_, err = a.AddItem(ctx, "1", Document{}, ConflictError)
			require.NoError(t, err)
			_, err = a.UpdateItem(ctx, "1", Document{"v": 1}, ConflictError)
			require.NoError(t, err)

			// Skipped writes leave the revision alone.
			_, err = a.AddItem(ctx, "1", Document{}, ConflictSkip)
			require.NoError(t, err)

			_, err = a.RemoveItem(ctx, "1", ConflictError)
			require.NoError(t, err)

			rev, err = a.Revision(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), rev)
		})
	}
}

func TestAdapter_Features(t *testing.T) {
	ctx := context.Background()
	for name, a := range backends(t, "people") {
		t.Run(name, func(t *testing.T) {
			assert.True(t, a.HasFeature(FeatureCache))
			assert.False(t, a.HasFeature("fulltext"))

			err := a.EnableFeature("fulltext", ConflictError)
			assert.True(t, HasCode(err, ErrCodeUnsupportedFeature), "got %v", err)
			assert.NoError(t, a.EnableFeature("fulltext", ConflictSkip))

			require.NoError(t, a.EnableFeature(FeatureCache, ConflictError))

			_, err = a.AddItem(ctx, "1", Document{"v": "a"}, ConflictError)
			require.NoError(t, err)

			doc, _, err := a.GetItem(ctx, "1")
			require.NoError(t, err)
			doc["v"] = "mutated by caller"

			doc, _, err = a.GetItem(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "a", doc["v"], "cache hands out copies")

			_, err = a.UpdateItem(ctx, "1", Document{"v": "b"}, ConflictError)
			require.NoError(t, err)

			doc, _, err = a.GetItem(ctx, "1")
			require.NoError(t, err)
			assert.Equal(t, "b", doc["v"], "new revision invalidates the cache")
		})
	}
}

func TestError_Message(t *testing.T) {
	err := &Error{Code: ErrCodeIDInUse, Message: "taken", Collection: "people", ID: "7"}
	assert.Equal(t, "ID_IN_USE: taken (collection=people, id=7)", err.Error())

	err = &Error{Code: ErrCodeUnknownAdapter, Message: "nope"}
	assert.Equal(t, "UNKNOWN_ADAPTER: nope", err.Error())
}

func ids(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d["id"].(string))
	}
	return out
}
