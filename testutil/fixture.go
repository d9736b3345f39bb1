// Package testutil provides fixtures and assertions shared by filedb tests
package testutil

import (
	_ "embed"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/filedb/filedb"
	"github.com/arthur-debert/filedb/filedb/collection"
	"github.com/arthur-debert/filedb/filedb/storage"
)

//go:embed testdata/people.json
var peopleJSON []byte

// Root is the location root of test environments
const Root = "/filedb"

// Address is nested inside Person to exercise nested path queries
type Address struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Person is the record type of the people fixture
type Person struct {
	collection.Object
	Name    string    `json:"name"`
	Age     int       `json:"age"`
	Email   string    `json:"email,omitempty"`
	Tags    []string  `json:"tags,omitempty"`
	Address *Address  `json:"address,omitempty"`
	Joined  time.Time `json:"joined"`
}

// PeopleData provides typed access to the inserted fixture records
type PeopleData struct {
	Ada     *Person // _id 1
	Grace   *Person // _id 2, age 85
	Linus   *Person // _id 3, no email
	Ken     *Person // _id 4
	Barbara *Person // _id 5, age 85, no email

	All []*Person
}

// Env is an in-memory client with one location registered under
// filedb.DefaultTag
type Env struct {
	Client *filedb.Client
	FS     *storage.AferoFileSystem
}

// NewEnv creates an in-memory test environment. Extra options are applied
// after the file system option.
func NewEnv(t *testing.T, opts ...filedb.ClientOption) *Env {
	t.Helper()

	fs := storage.NewMemFileSystem()
	if err := fs.MkdirAll(Root, 0o755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}

	client := filedb.NewClient(append([]filedb.ClientOption{filedb.WithFileSystem(fs)}, opts...)...)
	if err := client.AddLocation(filedb.DefaultTag, Root); err != nil {
		t.Fatalf("failed to add location: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &Env{Client: client, FS: fs}
}

// DataStore opens a data store under the default location
func (e *Env) DataStore(t *testing.T, name string) *filedb.DataStore {
	t.Helper()
	ds, err := e.Client.DataStore(name)
	if err != nil {
		t.Fatalf("failed to open data store %s: %v", name, err)
	}
	return ds
}

// People opens the "people" collection of the "fixtures" data store
func (e *Env) People(t *testing.T, opts ...filedb.CollectionOption) filedb.Opened[Person, *Person] {
	t.Helper()
	people, err := filedb.GetCollection[Person](e.DataStore(t, "fixtures"), "people", opts...)
	if err != nil {
		t.Fatalf("failed to open people: %v", err)
	}
	return people
}

// LoadPeople inserts the people fixture and persists it
func LoadPeople(t *testing.T, e *Env, opts ...filedb.CollectionOption) (filedb.Opened[Person, *Person], *PeopleData) {
	t.Helper()

	var fixture struct {
		People []*Person `json:"people"`
	}
	if err := json.Unmarshal(peopleJSON, &fixture); err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	people := e.People(t, opts...)
	inserted, err := people.InsertMany(fixture.People, collection.Persist)
	if err != nil {
		t.Fatalf("failed to insert fixture: %v", err)
	}

	data := &PeopleData{
		Ada:     inserted[0],
		Grace:   inserted[1],
		Linus:   inserted[2],
		Ken:     inserted[3],
		Barbara: inserted[4],
		All:     inserted,
	}
	return people, data
}
