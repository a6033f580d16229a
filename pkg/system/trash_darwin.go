// Zaparoo USB Observer
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo USB Observer.
//
// Zaparoo USB Observer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo USB Observer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo USB Observer.  If not, see <http://www.gnu.org/licenses/>.

//go:build darwin

package system

/*
#cgo CFLAGS: -Wno-deprecated-declarations
#cgo LDFLAGS: -framework CoreServices
#include <CoreServices/CoreServices.h>
#include <stdlib.h>

static OSStatus uo_make_ref(const char *path, FSRef *ref) {
	return FSPathMakeRefWithOptions((const UInt8 *)path,
		kFSPathMakeRefDoNotFollowLeafSymlink, ref, NULL);
}

static OSStatus uo_move_to_trash(FSRef *ref) {
	return FSMoveObjectToTrashSync(ref, NULL, kFSFileOperationDefaultOptions);
}

static const char *uo_status_comment(OSStatus status) {
	return GetMacOSStatusCommentString(status);
}
*/
import "C" //nolint:gocritic // cgo requires separate import block

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unsafe"

	"github.com/rs/zerolog/log"
)

// OSStatus values with a portable equivalent.
const (
	statusFileNotFound = -43
	statusPermission   = -54
	statusWritePerm    = -61
	statusAccessDenied = -5000
)

func moveToTrash(path string) error {
	if strings.IndexByte(path, 0) >= 0 {
		return &OSError{
			Op:      "trash",
			Path:    path,
			Message: "path contains NUL byte",
			Err:     os.ErrInvalid,
		}
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	var ref C.FSRef
	if status := C.uo_make_ref(cPath, &ref); status != C.noErr {
		return statusError("FSPathMakeRef", path, int(status))
	}
	if status := C.uo_move_to_trash(&ref); status != C.noErr {
		return statusError("FSMoveObjectToTrash", path, int(status))
	}

	log.Debug().Str("path", path).Msg("moved to trash")
	return nil
}

func statusError(op, path string, status int) *OSError {
	return &OSError{
		Op:      op,
		Path:    path,
		Code:    status,
		Message: statusMessage(status),
		Err:     statusErr(status),
	}
}

func statusMessage(status int) string {
	if c := C.uo_status_comment(C.OSStatus(status)); c != nil {
		if msg := C.GoString(c); msg != "" {
			return msg
		}
	}
	return fmt.Sprintf("OSStatus %d", status)
}

func statusErr(status int) error {
	switch status {
	case statusFileNotFound:
		return os.ErrNotExist
	case statusPermission, statusWritePerm, statusAccessDenied:
		return os.ErrPermission
	default:
		return errors.New(statusMessage(status))
	}
}
