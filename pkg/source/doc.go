// Package source loads floor layouts from the places they are kept.
//
// Every backend implements [Source]:
//
//   - [File]: one TOML or JSON document per floor in a directory
//   - [HTTP]: the floor API of a building-management backend
//   - [Mongo]: a "floors" collection, one document per floor
//   - [Postgres]: floors and rooms tables
//   - [Static]: an in-memory map, for tests and demos
//
// [Cached] puts any source behind a [cache.Cache]. [Open] builds the
// configured source, wrapping remote kinds in a cache.
//
// Sources return FLOOR_NOT_FOUND for unknown ids. Viewers treat that as an
// empty floor; use [Load] to get that behavior.
//
// [cache.Cache]: github.com/matzehuels/floorview/pkg/cache
package source
