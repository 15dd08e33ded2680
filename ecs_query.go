package raymarch

import (
	"reflect"
)

// Queries walk entities in ascending id order. Map stops early when the
// callback returns false.
type Query1[A any] struct{ ecs *Ecs }
type Query2[A, B any] struct{ ecs *Ecs }
type Query3[A, B, C any] struct{ ecs *Ecs }

func MakeQuery1[A any](cmd *Commands) Query1[A]             { return Query1[A]{ecs: cmd.app.ecs} }
func MakeQuery2[A, B any](cmd *Commands) Query2[A, B]       { return Query2[A, B]{ecs: cmd.app.ecs} }
func MakeQuery3[A, B, C any](cmd *Commands) Query3[A, B, C] { return Query3[A, B, C]{ecs: cmd.app.ecs} }

func (q Query1[A]) Map(m func(EntityId, *A) bool) {
	typeA := typeOf[A]()
	storageA := q.ecs.storages[typeA]

	for _, entityId := range q.ecs.sortedEntities(typeA) {
		if !m(entityId, storageA[entityId].(*A)) {
			return
		}
	}
}

func (q Query2[A, B]) Map(m func(EntityId, *A, *B) bool) {
	typeA, typeB := typeOf[A](), typeOf[B]()
	storageA, storageB := q.ecs.storages[typeA], q.ecs.storages[typeB]

	for _, entityId := range q.ecs.sortedEntities(typeA) {
		b, ok := storageB[entityId]
		if !ok {
			continue
		}
		if !m(entityId, storageA[entityId].(*A), b.(*B)) {
			return
		}
	}
}

func (q Query3[A, B, C]) Map(m func(EntityId, *A, *B, *C) bool) {
	typeA, typeB, typeC := typeOf[A](), typeOf[B](), typeOf[C]()
	storageA, storageB, storageC := q.ecs.storages[typeA], q.ecs.storages[typeB], q.ecs.storages[typeC]

	for _, entityId := range q.ecs.sortedEntities(typeA) {
		b, ok := storageB[entityId]
		if !ok {
			continue
		}
		c, ok := storageC[entityId]
		if !ok {
			continue
		}
		if !m(entityId, storageA[entityId].(*A), b.(*B), c.(*C)) {
			return
		}
	}
}

// GetComponent returns the entity's component of type T, or nil.
func GetComponent[T any](cmd *Commands, entityId EntityId) *T {
	c, ok := cmd.app.ecs.storages[typeOf[T]()][entityId]
	if !ok {
		return nil
	}
	return c.(*T)
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
