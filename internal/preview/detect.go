package preview

import "os/exec"

// LookPathFunc finds an executable, like exec.LookPath
type LookPathFunc func(file string) (string, error)

// DetectTier decides once which tier to render with. An explicit override is
// honored when its tool is installed and otherwise degrades to the next
// available tier. In auto mode the external tiers are only used when output
// goes to a terminal.
func DetectTier(override string, terminal bool, lookPath LookPathFunc) (Tier, Tools, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	want, explicit, err := ParseTier(override)
	if err != nil {
		return TierPlain, Tools{}, err
	}
	if !explicit {
		if !terminal {
			return TierPlain, Tools{}, nil
		}
		want = TierRich
	}

	var tools Tools
	if p, err := lookPath("glow"); err == nil {
		tools.Glow = p
	}
	for _, name := range []string{"bat", "batcat"} {
		if p, err := lookPath(name); err == nil {
			tools.Bat = p
			break
		}
	}

	switch {
	case want >= TierRich && tools.Glow != "":
		return TierRich, tools, nil
	case want >= TierPager && tools.Bat != "":
		return TierPager, tools, nil
	default:
		return TierPlain, tools, nil
	}
}
