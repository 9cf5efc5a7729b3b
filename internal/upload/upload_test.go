// Copyright 2026 The PulseFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package upload

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsefit/pulsefit/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.UploadConfig{
		Dir:          t.TempDir(),
		MaxSizeBytes: 1024,
	})
	require.NoError(t, err)
	return store
}

func TestStore_SaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("photo.JPG", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotContains(t, name, "photo")

	f, err := store.Open(name)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestStore_Save_RejectsUnsupportedType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("script.sh", strings.NewReader("#!/bin/sh"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestStore_Save_RejectsOversize(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save("big.png", strings.NewReader(strings.Repeat("x", 2048)))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestStore_Save_IgnoresClientPath(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("../../etc/evil.png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(name), name)
}

func TestStore_Open_RejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Open(".hidden")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Open("missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Remove(t *testing.T) {
	store := newTestStore(t)

	name, err := store.Save("photo.png", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(name))
	_, err = store.Open(name)
	assert.ErrorIs(t, err, ErrNotFound)

	// Idempotent.
	assert.NoError(t, store.Remove(name))

	assert.ErrorIs(t, store.Remove("../oops"), ErrNotFound)
}
