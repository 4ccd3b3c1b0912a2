// Package containerstore provides a Redis-backed staging store for encoded
// containers, e.g. for handing a container off between the producer that
// encoded it and the consumer that decodes it. Containers are stored in
// their binary form under structured keys and can expire automatically.
package containerstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/holmberd/go-formpack/container"
	"github.com/holmberd/go-formpack/containerstore/internal/rediskey"
	"github.com/holmberd/go-formpack/datastore"
	"github.com/holmberd/go-formpack/eventemitter"
)

// Key structure: "<__namespace__>:formpack:container:<id>"
const (
	keyModule = "formpack"
	keyKind   = "container"
)

// ErrNotFound is returned when no container is staged under the requested ID.
var ErrNotFound = errors.New("containerstore: container not found")

// StoreEvent identifies the events a store emits to its listeners.
type StoreEvent int

const (
	ContainersStored StoreEvent = iota + 1
	ContainersRemoved
	ContainersFlushed
)

func (e StoreEvent) String() string {
	switch e {
	case ContainersStored:
		return "ContainersStored"
	case ContainersRemoved:
		return "ContainersRemoved"
	case ContainersFlushed:
		return "ContainersFlushed"
	default:
		return fmt.Sprintf("event(%d)", e)
	}
}

// StoreListener receives the container IDs affected by a store event.
type StoreListener = eventemitter.Listener[[]string]

type eventTarget struct {
	t *eventemitter.Target[[]string]
}

func (e *eventTarget) AddListener(listener StoreListener) eventemitter.ListenerToken {
	return e.t.AddListener(listener)
}

func (e *eventTarget) RemoveListener(token eventemitter.ListenerToken) bool {
	return e.t.RemoveListener(token)
}

func (e *eventTarget) emit(ctx context.Context, ids []string) bool {
	return e.t.Emit(ctx, ids)
}

// NewID returns a new unique container ID.
// IDs are time-ordered, so listing staged containers yields staging order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Store provides staging storage for containers.
// Listeners can subscribe to stored and removed events through OnStored and OnRemoved.
type Store struct {
	namespace string // Optional key namespace.
	dsClient  *datastore.Client
	onStored  *eventTarget
	onRemoved *eventTarget
	onFlushed *eventTarget
}

// New creates a new instance of a store.
func New(namespace string, dsClient *datastore.Client) (*Store, error) {
	if dsClient == nil {
		return nil, errors.New("containerstore: datastore client must not be nil")
	}
	if namespace != "" {
		if err := rediskey.ValidateFragment(namespace); err != nil {
			return nil, fmt.Errorf("containerstore: invalid namespace: %w", err)
		}
	}
	return &Store{
		namespace: rediskey.Namespace(namespace),
		dsClient:  dsClient,
		onStored:  &eventTarget{eventemitter.NewTarget[[]string](ContainersStored.String())},
		onRemoved: &eventTarget{eventemitter.NewTarget[[]string](ContainersRemoved.String())},
		onFlushed: &eventTarget{eventemitter.NewTarget[[]string](ContainersFlushed.String())},
	}, nil
}

func (s *Store) OnStored() *eventTarget {
	return s.onStored
}

func (s *Store) OnRemoved() *eventTarget {
	return s.onRemoved
}

func (s *Store) OnFlushed() *eventTarget {
	return s.onFlushed
}

// key builds the storage key for a container ID.
func (s *Store) key(id string) (string, error) {
	if err := rediskey.ValidateFragment(id); err != nil {
		return "", fmt.Errorf("containerstore: invalid container ID '%s': %w", id, err)
	}
	return rediskey.Build(s.namespace, keyModule, keyKind, id), nil
}

// matchPattern builds the match pattern covering every container key in the store.
func (s *Store) matchPattern() string {
	return rediskey.MatchPattern(rediskey.Build(s.namespace, keyModule, keyKind), rediskey.WildcardAnyString)
}

// flush deletes all keys in the key namespace, used in e.g. tests.
// It triggers the ContainersFlushed event.
func (s *Store) flush(ctx context.Context) error {
	if s.namespace == "" {
		log.Panic("flush store called without key namespace set")
	}
	if err := s.dsClient.DeleteMatch(ctx, s.matchPattern()); err != nil {
		return err
	}
	s.onFlushed.emit(ctx, []string{})
	return nil
}

// Put stages a container under a newly generated ID and returns the ID.
// A zero expiration means the container never expires.
// It triggers the ContainersStored event.
func (s *Store) Put(
	ctx context.Context,
	c *container.Container,
	expiration time.Duration,
) (string, error) {
	id := NewID()
	if err := s.put(ctx, id, c, expiration); err != nil {
		return "", err
	}
	s.onStored.emit(ctx, []string{id})
	return id, nil
}

// PutWithID stages a container under a caller-chosen ID.
// If the ID doesn't exist the container is added, otherwise it's replaced.
func (s *Store) PutWithID(
	ctx context.Context,
	id string,
	c *container.Container,
	expiration time.Duration,
) error {
	if err := s.put(ctx, id, c, expiration); err != nil {
		return err
	}
	s.onStored.emit(ctx, []string{id})
	return nil
}

func (s *Store) put(
	ctx context.Context,
	id string,
	c *container.Container,
	expiration time.Duration,
) error {
	if c == nil {
		return errors.New("containerstore: container must not be nil")
	}
	key, err := s.key(id)
	if err != nil {
		return err
	}
	data, err := c.MarshalBinary()
	if err != nil {
		return fmt.Errorf("containerstore: failed to marshal container '%s': %w", id, err)
	}
	return s.dsClient.Put(ctx, key, data, expiration)
}

// PutBatch stages multiple containers in a batch operation and returns their generated IDs.
func (s *Store) PutBatch(
	ctx context.Context,
	containers []*container.Container,
	expiration time.Duration,
) ([]string, error) {
	if len(containers) == 0 {
		return nil, nil // No-op for empty batch.
	}
	ids := make([]string, len(containers))
	keys := make([]string, len(containers))
	data := make([][]byte, len(containers))
	for i, c := range containers {
		if c == nil {
			return nil, errors.New("containerstore: container must not be nil")
		}
		id := NewID()
		key, err := s.key(id)
		if err != nil {
			return nil, err
		}
		d, err := c.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("containerstore: failed to marshal container '%s': %w", id, err)
		}
		ids[i] = id
		keys[i] = key
		data[i] = d
	}
	if err := s.dsClient.PutMulti(ctx, keys, data, expiration); err != nil {
		return nil, err
	}
	s.onStored.emit(ctx, ids)
	return ids, nil
}

// Get retrieves a staged container by ID.
// ErrNotFound is returned if the ID is not found in the store.
func (s *Store) Get(ctx context.Context, id string) (*container.Container, error) {
	key, err := s.key(id)
	if err != nil {
		return nil, err
	}
	data, err := s.dsClient.Get(ctx, key)
	if err != nil {
		if errors.Is(err, datastore.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c := container.New()
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("containerstore: failed to unmarshal container '%s': %w", id, err)
	}
	return c, nil
}

// GetByIDs retrieves multiple staged containers by their IDs.
// If an ID doesn't exist in the store it is not included in the result.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]*container.Container, error) {
	if len(ids) == 0 {
		return nil, nil // No-op for empty slice of IDs.
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		key, err := s.key(id)
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}
	data, err := s.dsClient.GetMulti(ctx, keys)
	if err != nil {
		return nil, err
	}
	containers := make([]*container.Container, len(data))
	for i, d := range data {
		containers[i] = container.New()
		if err := containers[i].UnmarshalBinary(d); err != nil {
			return nil, fmt.Errorf("containerstore: failed to unmarshal container: %w", err)
		}
	}
	return containers, nil
}

// Remove removes a staged container by ID from the store.
// It triggers the ContainersRemoved event.
func (s *Store) Remove(ctx context.Context, id string) error {
	key, err := s.key(id)
	if err != nil {
		return err
	}
	if err := s.dsClient.Delete(ctx, key); err != nil {
		return err
	}
	s.onRemoved.emit(ctx, []string{id})
	return nil
}

// RemoveByIDs removes multiple staged containers by their IDs from the store.
func (s *Store) RemoveByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil // No-op for empty slice of IDs.
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		key, err := s.key(id)
		if err != nil {
			return err
		}
		keys[i] = key
	}
	if err := s.dsClient.Delete(ctx, keys...); err != nil {
		return err
	}
	s.onRemoved.emit(ctx, ids)
	return nil
}

// ListIDs retrieves the IDs of all staged containers as a non-blocking operation.
// May miss containers staged or removed during iteration.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	keys, err := s.dsClient.ScanKeys(ctx, s.matchPattern())
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, key := range keys {
		fragments := rediskey.Parse(key)
		ids[i] = fragments[len(fragments)-1]
	}
	return ids, nil
}

// Exists checks whether a container is staged under the ID.
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	key, err := s.key(id)
	if err != nil {
		return false, err
	}
	return s.dsClient.Exists(ctx, key)
}
