// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spdy

import "github.com/go-spdy/spdyframe/internal/view"

// readSettingsFrame parses a SETTINGS frame's entry-count prologue on
// first entry, then as many complete 8-byte entries as are currently
// readable on each subsequent call, per spec §4.5.
func (d *Decoder) readSettingsFrame(v *view.View) FrameEvent {
	if d.pendingSettings == nil {
		if v.Readable() < 4 {
			return nil
		}
		numEntries := v.Uint32At(0)
		v.Skip(4)
		d.length -= 4

		if d.length%settingsEntrySize != 0 || d.length/settingsEntrySize != numEntries {
			d.fail(newInvalidFrame(0, "SETTINGS entry count %d disagrees with remaining length %d", numEntries, d.length))
			return nil
		}

		d.pendingSettings = &SettingsFrame{
			ClearPreviouslyPersisted: d.flags&FlagSettingsClear != 0,
			Entries:                  make(map[uint32]SettingsEntry, numEntries),
		}
		d.settingsRemaining = numEntries
	}

	for d.settingsRemaining > 0 && uint32(v.Readable()) >= settingsEntrySize {
		entryFlags := v.Uint8At(0)
		id := v.Uint24At(1)
		value := v.Int32At(4)
		v.Skip(settingsEntrySize)
		d.length -= settingsEntrySize
		d.settingsRemaining--

		if id == 0 {
			d.fail(newInvalidFrame(0, "SETTINGS entry id must not be zero"))
			return nil
		}
		if _, seen := d.pendingSettings.Entries[id]; seen {
			continue // first occurrence wins, spec §4.5 and §8 property 7
		}
		d.pendingSettings.Entries[id] = SettingsEntry{
			Value:        value,
			PersistValue: entryFlags&FlagPersistValue != 0,
			Persisted:    entryFlags&FlagPersisted != 0,
		}
	}

	if d.length == 0 {
		frame := d.pendingSettings
		d.pendingSettings = nil
		d.state = stateReadCommonHeader
		return frame
	}
	return nil
}
