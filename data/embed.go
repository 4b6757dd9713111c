// embed.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package data embeds SQL used to prepare development and integration
// databases.
package data

import (
	_ "embed"
)

// Development stack credentials created by InitdbMariaDBUsers
const (
	DevDatabase       = "traction"
	DevAppUser        = "traction_app"
	DevAppPassword    = "traction_app_pw"
	DevPublicUser     = "traction_public"
	DevPublicPassword = "traction_public_pw"
)

//go:embed initdb/mariadb/001-users.sql
var InitdbMariaDBUsers string

//go:embed initdb/mariadb/002-legacy-seed.sql
var InitdbMariaDBLegacySeed string
