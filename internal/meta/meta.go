// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/fxctl/internal/app"
	"github.com/staranto/fxctl/internal/config"
)

// Meta are the meta-options that are available on all or most commands.
// App is shared by every command in the process so they all see one
// conversion cache.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	App     *app.App
}
