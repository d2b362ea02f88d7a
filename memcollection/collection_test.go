package memcollection_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/queryalgebra/condition"
	"github.com/oxhq/queryalgebra/descriptor"
	"github.com/oxhq/queryalgebra/memcollection"
	"github.com/oxhq/queryalgebra/modification"
)

type task struct {
	Title string
	Done  bool
}

func buildTaskDescriptor() *descriptor.Descriptor {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	boolD := descriptor.NewPrimitive("Boolean", reflect.TypeOf(false))
	return descriptor.NewStruct("Task", task{}).
		Field("title", "Title", stringD, false, nil).
		Field("done", "Done", boolD, false, nil).
		Build()
}

func sampleTasks() []task {
	return []task{
		{Title: "write spec", Done: true},
		{Title: "write code", Done: false},
		{Title: "write tests", Done: false},
	}
}

func doneEquals(d *descriptor.Descriptor, want bool) condition.Condition {
	doneProp, _ := d.FieldByName("done")
	return condition.OnField{Property: doneProp, Condition: condition.Equal{Value: want}}
}

func setDone(d *descriptor.Descriptor, value bool) modification.Modification {
	doneProp, _ := d.FieldByName("done")
	return modification.OnField{Property: doneProp, Modification: modification.Assign{Value: value}}
}

func TestFindCountInsertDelete(t *testing.T) {
	d := buildTaskDescriptor()
	c := memcollection.New(sampleTasks())
	assert.Equal(t, 3, c.Len())

	pending := doneEquals(d, false)
	found, err := c.Find(pending)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	n, err := c.Count(pending)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total := c.Insert(task{Title: "ship it", Done: false})
	assert.Equal(t, 4, total)

	removed, err := c.DeleteWhere(doneEquals(d, true))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 3, c.Len())
}

func TestUpdateWhere(t *testing.T) {
	d := buildTaskDescriptor()
	c := memcollection.New(sampleTasks())

	touched, err := c.UpdateWhere(doneEquals(d, false), setDone(d, true))
	require.NoError(t, err)
	assert.Equal(t, 2, touched)

	remaining, err := c.Find(doneEquals(d, false))
	require.NoError(t, err)
	assert.Len(t, remaining, 0)
}

func TestNewDoesNotAliasCallerSlice(t *testing.T) {
	records := sampleTasks()
	c := memcollection.New(records)
	records[0].Title = "mutated after New"

	all := c.All()
	assert.Equal(t, "write spec", all[0].Title)
}
