package raymarch

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type set[T comparable] = map[T]struct{}

// Ecs stores components per type. Each stored component is a pointer to a
// private copy, so queries hand out stable pointers until the component or
// its entity is removed.
type Ecs struct {
	entities map[EntityId]set[reflect.Type]
	storages map[reflect.Type]map[EntityId]any

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId
}

func MakeEcs() Ecs {
	return Ecs{
		entities:        make(map[EntityId]set[reflect.Type]),
		storages:        make(map[reflect.Type]map[EntityId]any),
		entityIdCounter: EntityId(0),
	}
}

func (ecs *Ecs) addEntity(components ...any) EntityId {
	entityId := ecs.nextEntityId()
	return ecs.insertEntity(entityId, components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	if _, ok := ecs.entities[entityId]; !ok {
		ecs.entities[entityId] = make(set[reflect.Type])
	}
	for _, component := range components {
		ecs.writeComponent(entityId, component)
	}
	return entityId
}

func (ecs *Ecs) removeEntity(entityId EntityId) {
	for componentType := range ecs.entities[entityId] {
		delete(ecs.storages[componentType], entityId)
	}
	delete(ecs.entities, entityId)
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	if _, ok := ecs.entities[entityId]; !ok {
		panic(fmt.Sprintf("entity %v does not exist", entityId))
	}
	for _, component := range components {
		ecs.writeComponent(entityId, component)
	}
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	types, ok := ecs.entities[entityId]
	if !ok {
		return
	}
	for _, component := range components {
		componentType := componentTypeOf(component)
		delete(ecs.storages[componentType], entityId)
		delete(types, componentType)
	}
}

func (ecs *Ecs) writeComponent(entityId EntityId, component any) {
	componentType := componentTypeOf(component)

	value := reflect.ValueOf(component)
	if value.Kind() == reflect.Pointer {
		value = value.Elem()
	}

	storage, ok := ecs.storages[componentType]
	if !ok {
		storage = make(map[EntityId]any)
		ecs.storages[componentType] = storage
	}

	// copy into storage the entity owns
	ptr := reflect.New(componentType)
	ptr.Elem().Set(value)
	storage[entityId] = ptr.Interface()
	ecs.entities[entityId][componentType] = struct{}{}
}

func componentTypeOf(component any) reflect.Type {
	componentType := reflect.TypeOf(component)
	if componentType == nil {
		panic("component should not be nil")
	}
	if componentType.Kind() == reflect.Pointer {
		componentType = componentType.Elem()
	}
	if componentType.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", componentType.Kind()))
	}
	return componentType
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entities[entityId]
	return ok
}

// sortedEntities returns the entities holding componentType in id order.
func (ecs *Ecs) sortedEntities(componentType reflect.Type) []EntityId {
	storage := ecs.storages[componentType]
	ids := make([]EntityId, 0, len(storage))
	for id := range storage {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter += 1

	return id
}
