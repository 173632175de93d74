package mystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type Person struct {
	UID  string
	Name string
	Age  int
}

var (
	person = Person{UID: "123", Name: "Marc", Age: 42}
)

func TestStore(t *testing.T) {
	c := context.TODO()
	ps, cleanup, err := newInMemoryStore[Person](c)
	assert.NoError(t, err)
	defer cleanup()

	t.Run("Get not found", func(t *testing.T) {
		_, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Get put", func(t *testing.T) {
		err = ps.Put(c, person.UID, person)
		assert.NoError(t, err)
	})

	t.Run("Get found", func(t *testing.T) {
		p, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, Person{UID: "123", Name: "Marc", Age: 42}, p)
	})

	t.Run("List", func(t *testing.T) {
		all, err := ps.List(c)
		assert.NoError(t, err)
		assert.Equal(t, all, []Person{person})
	})

	t.Run("Query on equality", func(t *testing.T) {
		other := Person{UID: "456", Name: "Eva", Age: 40}
		err := ps.Put(c, other.UID, other)
		assert.NoError(t, err)

		got, err := ps.Query(c, []Filter{{Field: "Name", Compare: "=", Value: "Eva"}}, "")
		assert.NoError(t, err)
		assert.Equal(t, []Person{other}, got)

		got, err = ps.Query(c, []Filter{{Field: "Age", Compare: "=", Value: 99}}, "")
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Remove", func(t *testing.T) {
		err := ps.Remove(c, person.UID)
		assert.NoError(t, err)

		_, found, err := ps.Get(c, person.UID)
		assert.NoError(t, err)
		assert.False(t, found)

		// removing again is a no-op
		err = ps.Remove(c, person.UID)
		assert.NoError(t, err)
	})
}
