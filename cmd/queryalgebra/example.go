package main

import (
	"reflect"

	"github.com/oxhq/queryalgebra/descriptor"
)

// Person is the built-in example record type every demo subcommand
// builds conditions and modifications against.
type Person struct {
	Name   string
	Age    int32
	Active bool
	Tags   []string
}

var personDescriptor = buildPersonDescriptor()

func buildPersonDescriptor() *descriptor.Descriptor {
	stringD := descriptor.NewPrimitive("String", reflect.TypeOf(""))
	int32D := descriptor.NewPrimitive("Int32", reflect.TypeOf(int32(0)))
	boolD := descriptor.NewPrimitive("Boolean", reflect.TypeOf(false))
	tagsD := descriptor.NewList(stringD)

	return descriptor.NewStruct("Person", Person{}).
		WithDefault(func() any { return Person{} }).
		Field("name", "Name", stringD, false, nil).
		Field("age", "Age", int32D, false, nil).
		Field("active", "Active", boolD, false, nil).
		Field("tags", "Tags", tagsD, true, nil).
		Build()
}

// samplePeople is the in-memory dataset the `apply` subcommand runs
// conditions and modifications against.
func samplePeople() []Person {
	return []Person{
		{Name: "Ada Lovelace", Age: 36, Active: true, Tags: []string{"mathematics", "computing"}},
		{Name: "Alan Turing", Age: 41, Active: false, Tags: []string{"computing", "cryptography"}},
		{Name: "Grace Hopper", Age: 85, Active: true, Tags: []string{"computing", "navy"}},
	}
}
