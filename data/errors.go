// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed = errors.New("history fetch failed after exhausting retries")
)

// FetchError wraps the last upstream error once the retry budget is
// spent. Kind records how the final failure was classified so the
// caller sees the rationale, not just the raw message.
type FetchError struct {
	Symbol   string
	Kind     ErrKind
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s for %s after %d attempts (%s): %v",
		ErrFetchFailed.Error(), e.Symbol, e.Attempts, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports true for ErrFetchFailed so callers can test with
// errors.Is without knowing the concrete type.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
