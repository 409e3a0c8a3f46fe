// Package store defines the persistence contracts consumed by the
// scheduling engine and the errors every backend maps onto. Backends live
// under internal/platform.
package store
