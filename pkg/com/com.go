// Package com contains collections of network participants.
package com

import "github.com/hashicorp/go-multierror"

type NetClient[K comparable] interface {
	Close() error
	Id() K
}

// NetMap keeps clients by their ids.
type NetMap[K comparable, T NetClient[K]] struct{ *Map[K, T] }

func NewNetMap[K comparable, T NetClient[K]]() NetMap[K, T] {
	return NetMap[K, T]{Map: NewMap[K, T]()}
}

func (m NetMap[K, T]) Add(client T)    { m.Put(client.Id(), client) }
func (m NetMap[K, T]) Remove(client T) { m.RemoveByKey(client.Id()) }

// RemoveClose closes the client first and only then removes it.
func (m NetMap[K, T]) RemoveClose(client T) error {
	err := client.Close()
	m.Remove(client)
	return err
}

// CloseAll removes every client with RemoveClose.
func (m NetMap[K, T]) CloseAll() error {
	var result *multierror.Error
	for _, c := range m.Values() {
		if err := m.RemoveClose(c); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
