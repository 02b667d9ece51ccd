package params

import "testing"

func TestMainnetForkOrdering(t *testing.T) {
	c := MainnetChainConfig

	tests := []struct {
		name  string
		block uint64
		want  bool
		check func(uint64) bool
	}{
		{"Homestead active at its own block", 1150000, true, c.IsHomestead},
		{"Homestead inactive one block before", 1149999, false, c.IsHomestead},
		{"Byzantium inactive at Homestead block", 1150000, false, c.IsByzantium},
		{"Byzantium active at its own block", 4370000, true, c.IsByzantium},
		{"London active at its own block", 12965000, true, c.IsLondon},
		{"London inactive one block before", 12964999, false, c.IsLondon},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.block); got != tt.want {
				t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestMainnetShanghaiCancunGatedByTime(t *testing.T) {
	c := MainnetChainConfig
	if !c.IsShanghai(*c.ShanghaiTime) {
		t.Error("IsShanghai should be true at its own activation time")
	}
	if c.IsShanghai(*c.ShanghaiTime - 1) {
		t.Error("IsShanghai should be false one second before activation")
	}
	if !c.IsCancun(*c.CancunTime) {
		t.Error("IsCancun should be true at its own activation time")
	}
	if c.IsPrague(1 << 62) {
		t.Error("mainnet config has no PragueTime set; IsPrague must stay false")
	}
}

func TestDAOForkRequiresSupportFlag(t *testing.T) {
	c := &ChainConfig{DAOForkBlock: bigPtr(100), DAOForkSupport: false}
	if c.IsDAOFork(200) {
		t.Error("IsDAOFork must be false when DAOForkSupport is false, regardless of block number")
	}

	c.DAOForkSupport = true
	if !c.IsDAOFork(200) {
		t.Error("IsDAOFork should be true past the fork block once support is enabled")
	}
}

func TestAllDevChainConfigActivatesEverythingFromGenesis(t *testing.T) {
	r := AllDevChainConfig.Rules(0, 0)
	if !r.IsHomestead || !r.IsByzantium || !r.IsLondon || !r.IsShanghai || !r.IsCancun || !r.IsPrague {
		t.Errorf("AllDevChainConfig.Rules(0, 0) = %+v, want every fork flag true", r)
	}
}

func TestRulesSnapshotMatchesIndividualPredicates(t *testing.T) {
	c := MainnetChainConfig
	num, tm := c.ByzantiumBlock.Uint64(), *c.ShanghaiTime

	r := c.Rules(num, tm)
	if r.IsHomestead != c.IsHomestead(num) {
		t.Error("Rules.IsHomestead disagrees with ChainConfig.IsHomestead")
	}
	if r.IsByzantium != c.IsByzantium(num) {
		t.Error("Rules.IsByzantium disagrees with ChainConfig.IsByzantium")
	}
	if r.IsShanghai != c.IsShanghai(tm) {
		t.Error("Rules.IsShanghai disagrees with ChainConfig.IsShanghai")
	}
	if r.ChainID.Cmp(c.ChainID) != 0 {
		t.Errorf("Rules.ChainID = %s, want %s", r.ChainID, c.ChainID)
	}
}

func TestNilForkBlockNeverActivates(t *testing.T) {
	c := &ChainConfig{}
	if c.IsHomestead(1 << 32) {
		t.Error("a nil fork block must never be considered activated")
	}
	if c.IsShanghai(1 << 32) {
		t.Error("a nil fork time must never be considered activated")
	}
}

func TestChainIDU256MatchesBigInt(t *testing.T) {
	c := MainnetChainConfig
	got := c.ChainIDU256()
	if got.ToBig().Cmp(c.ChainID) != 0 {
		t.Errorf("ChainIDU256() = %s, want %s", got, c.ChainID)
	}
}
