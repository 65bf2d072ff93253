package pipeline

// Mode selects which backend(s) a run drives.
type Mode string

const (
	// ModeBrowser drives the chromedp backend, with static fallback.
	ModeBrowser Mode = "browser"
	// ModeStatic drives the HTTP backend, with browser fallback.
	ModeStatic Mode = "static"
	// ModeStealth drives the proxied chromedp variant. No fallback: a
	// caller asking for stealth wants exactly that, so it fails loudly.
	ModeStealth Mode = "stealth"
	// ModeDual runs browser and static concurrently for comparison.
	// No merged list is produced.
	ModeDual Mode = "dual"
)

// dualBackends are the two designated backends compared in dual mode.
var dualBackends = [2]Mode{ModeBrowser, ModeStatic}

// ParseMode resolves a raw mode string, falling back to the configured
// default for unrecognized or absent values.
func ParseMode(raw, def string) Mode {
	switch Mode(raw) {
	case ModeBrowser, ModeStatic, ModeStealth, ModeDual:
		return Mode(raw)
	}
	switch Mode(def) {
	case ModeBrowser, ModeStatic, ModeStealth, ModeDual:
		return Mode(def)
	}
	return ModeBrowser
}

// fallbackFor returns the single alternate backend tried when the primary
// comes back empty with errors, or "" when the mode disallows fallback.
func fallbackFor(m Mode) Mode {
	switch m {
	case ModeBrowser:
		return ModeStatic
	case ModeStatic:
		return ModeBrowser
	default:
		return ""
	}
}
