/*
 * Copyright 2025 the wren authors.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Fallback values enums report for members outside their defined range:
// Number() yields IllegalValue, Name() and Desc() the unknown strings, so an
// invalid member stays printable without being valid.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum is the contract integer-backed domain enums satisfy: validity,
// the numeric value, a stable machine name, and a human description.
// String() aliases Name().
type BaseEnum interface {
	IsValid() bool
	Number() int
	Name() string
	String() string
	Desc() string
}
