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

package event

import (
	"fmt"

	"github.com/wrenkit/wren/types"
)

// Action identifies the entity lifecycle notification being emitted.
type Action int

const (
	ActionCreated Action = iota + 1
	ActionUpdated
	ActionDeleted
	ActionRestored
	ActionPermanentlyDeleted
)

var _ types.BaseEnum = ActionCreated

var actionNames = map[Action]string{
	ActionCreated:            "created",
	ActionUpdated:            "updated",
	ActionDeleted:            "deleted",
	ActionRestored:           "restored",
	ActionPermanentlyDeleted: "permanently_deleted",
}

var actionDescs = map[Action]string{
	ActionCreated:            "entity inserted",
	ActionUpdated:            "entity modified",
	ActionDeleted:            "entity soft deleted",
	ActionRestored:           "entity restored from soft delete",
	ActionPermanentlyDeleted: "entity removed permanently",
}

func (a Action) IsValid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) Number() int {
	if !a.IsValid() {
		return types.IllegalValue
	}
	return int(a)
}

func (a Action) Name() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return types.IllegalName
}

func (a Action) String() string { return a.Name() }

func (a Action) Desc() string {
	if desc, ok := actionDescs[a]; ok {
		return desc
	}
	return types.IllegalDesc
}

// Topic builds the notification topic for a repository prefix and action,
// in the form "{prefix}.entity.{action}".
func Topic(prefix string, action Action) string {
	return fmt.Sprintf("%s.entity.%s", prefix, action.Name())
}
