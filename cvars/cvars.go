// SPDX-License-Identifier: GPL-2.0-or-later

// Package cvars declares the concrete configuration variables the
// client-connection subsystem reads, registered through the cvar
// package the same way engine cvars are declared elsewhere in this
// codebase.
package cvars

import (
	"svconn/cvar"
)

var (
	SvMaxClients           *cvar.Cvar
	SvPrivateClients       *cvar.Cvar
	SvPrivatePassword      *cvar.Cvar
	SvReconnectLimit       *cvar.Cvar
	SvAllowDownload        *cvar.Cvar
	SvMaxRate              *cvar.Cvar
	SvMinRate              *cvar.Cvar
	SvClientRate           *cvar.Cvar
	SvRatePolicy           *cvar.Cvar
	SvFps                  *cvar.Cvar
	SvSnapsMin             *cvar.Cvar
	SvSnapsMax             *cvar.Cvar
	SvSnapsPolicy          *cvar.Cvar
	SvPure                 *cvar.Cvar
	SvFloodProtect         *cvar.Cvar
	SvFloodProtectSlow     *cvar.Cvar
	SvFilterCommands       *cvar.Cvar
	SvLegacyFixes          *cvar.Cvar
	SvPingFix              *cvar.Cvar
	SvStrictPacketTimestamp *cvar.Cvar
	SvLanForceRate         *cvar.Cvar
	SvAutoWhitelist        *cvar.Cvar

	GMaxWarnLevel *cvar.Cvar
	GCheats       *cvar.Cvar
	SvCheats      *cvar.Cvar
	GSmodConfig1  *cvar.Cvar

	LogFilePath *cvar.Cvar
	LogLevel    *cvar.Cvar
)

// SmodAdminPassword returns (creating if necessary) the per-id admin
// password cvar g_smodAdminPassword_<id>, mirroring the original's
// fixed-name-per-slot cvar layout rather than a single indexed array.
func SmodAdminPassword(id int) *cvar.Cvar {
	return perID("g_smodAdminPassword_", id)
}

// SmodConfig returns (creating if necessary) the per-id capability mask
// cvar g_smodconfig_<id>.
func SmodConfig(id int) *cvar.Cvar {
	return perID("g_smodconfig_", id)
}

func perID(prefix string, id int) *cvar.Cvar {
	name := prefix + itoa(id)
	if cv, ok := cvar.Get(name); ok {
		return cv
	}
	return cvar.MustRegister(name, "", cvar.ARCHIVE)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [12]byte
	p := len(buf)
	for i > 0 {
		p--
		buf[p] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		p--
		buf[p] = '-'
	}
	return string(buf[p:])
}

func init() {
	SvMaxClients = cvar.MustRegister("sv_maxclients", "8", cvar.SERVERINFO|cvar.LOCKED)
	SvPrivateClients = cvar.MustRegister("sv_privateClients", "0", cvar.ARCHIVE)
	SvPrivatePassword = cvar.MustRegister("sv_privatePassword", "", cvar.NONE)
	SvReconnectLimit = cvar.MustRegister("sv_reconnectlimit", "3", cvar.ARCHIVE)
	SvAllowDownload = cvar.MustRegister("sv_allowDownload", "1", cvar.ARCHIVE)
	SvMaxRate = cvar.MustRegister("sv_maxRate", "0", cvar.ARCHIVE)
	SvMinRate = cvar.MustRegister("sv_minRate", "0", cvar.ARCHIVE)
	SvClientRate = cvar.MustRegister("sv_clientRate", "25000", cvar.ARCHIVE)
	SvRatePolicy = cvar.MustRegister("sv_ratePolicy", "2", cvar.ARCHIVE)
	SvFps = cvar.MustRegister("sv_fps", "20", cvar.ARCHIVE)
	SvSnapsMin = cvar.MustRegister("sv_snapsMin", "10", cvar.ARCHIVE)
	SvSnapsMax = cvar.MustRegister("sv_snapsMax", "40", cvar.ARCHIVE)
	SvSnapsPolicy = cvar.MustRegister("sv_snapsPolicy", "2", cvar.ARCHIVE)
	SvPure = cvar.MustRegister("sv_pure", "1", cvar.SERVERINFO)
	SvFloodProtect = cvar.MustRegister("sv_floodProtect", "1", cvar.ARCHIVE)
	SvFloodProtectSlow = cvar.MustRegister("sv_floodProtectSlow", "0", cvar.ARCHIVE)
	SvFilterCommands = cvar.MustRegister("sv_filterCommands", "1", cvar.ARCHIVE)
	SvLegacyFixes = cvar.MustRegister("sv_legacyFixes", "0", cvar.ARCHIVE)
	SvPingFix = cvar.MustRegister("sv_pingFix", "0", cvar.ARCHIVE)
	SvStrictPacketTimestamp = cvar.MustRegister("sv_strictPacketTimestamp", "1", cvar.ARCHIVE)
	SvLanForceRate = cvar.MustRegister("sv_lanForceRate", "1", cvar.ARCHIVE)
	SvAutoWhitelist = cvar.MustRegister("sv_autoWhitelist", "1", cvar.ARCHIVE)

	GMaxWarnLevel = cvar.MustRegister("g_maxWarnLevel", "3", cvar.ARCHIVE)
	GCheats = cvar.MustRegister("g_cheats", "0", cvar.SERVERINFO)
	SvCheats = cvar.MustRegister("sv_cheats", "0", cvar.SERVERINFO)
	GSmodConfig1 = cvar.MustRegister("g_smodconfig_1", "0", cvar.ARCHIVE)

	LogFilePath = cvar.MustRegister("log_file_path", "", cvar.ARCHIVE)
	LogLevel = cvar.MustRegister("log_level", "info", cvar.ARCHIVE)
}
