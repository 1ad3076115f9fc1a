// =============================
// File: internal/scenario/scenario.go
// =============================
package scenario

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"gopkg.in/yaml.v3"
)

// Well-known names every scenario can refer to.
const (
	NameTokenProgram    = "token_program"
	NameSystemProgram   = "system_program"
	NameRouter          = "router"
	NameRouterPool      = "router_pool"
	NameRouterAuthority = "router_authority"
)

// File is a swap simulation fixture.
type File struct {
	Name          string         `yaml:"name"`
	ProgramID     string         `yaml:"program_id"`
	Wallets       []string       `yaml:"wallets"`
	Mints         []Mint         `yaml:"mints"`
	Exchanges     []Exchange     `yaml:"exchanges"`
	TokenAccounts []TokenAccount `yaml:"token_accounts"`
	Accounts      []RawAccount   `yaml:"accounts"`
	Router        Router         `yaml:"router"`
	Swap          Swap           `yaml:"swap"`
	Expect        Expect         `yaml:"expect"`
}

type Mint struct {
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Decimals int32  `yaml:"decimals"`
}

// Exchange is a fixed-rate token-swap pool deployed under its own program id.
type Exchange struct {
	Name            string `yaml:"name"`
	Numerator       uint64 `yaml:"numerator"`
	Denominator     uint64 `yaml:"denominator"`
	SourceMint      string `yaml:"source_mint"`
	DestinationMint string `yaml:"destination_mint"`
	Liquidity       uint64 `yaml:"liquidity"`
	HostFee         bool   `yaml:"host_fee"`
}

type TokenAccount struct {
	Name     string `yaml:"name"`
	Key      string `yaml:"key"`
	Mint     string `yaml:"mint"`
	Owner    string `yaml:"owner"`
	Delegate string `yaml:"delegate"`
	Amount   uint64 `yaml:"amount"`
}

// RawAccount is an arbitrary account. With Fetch set the account is loaded
// from the cluster instead of built from the fields.
type RawAccount struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	Owner      string `yaml:"owner"`
	Lamports   uint64 `yaml:"lamports"`
	Data       string `yaml:"data"`
	Encoding   string `yaml:"encoding"`
	Executable bool   `yaml:"executable"`
	Fetch      bool   `yaml:"fetch"`
}

// Router names the token account the router pool is initialized with.
type Router struct {
	Token string `yaml:"token"`
}

type Swap struct {
	User             string  `yaml:"user"`
	Source           string  `yaml:"source"`
	Destination      string  `yaml:"destination"`
	AmountIn         uint64  `yaml:"amount_in"`
	MinimumAmountOut uint64  `yaml:"minimum_amount_out"`
	Routes           []Route `yaml:"routes"`
}

// Route is one dex config. Either Exchange names a seeded exchange, or DexType
// and Accounts describe the leg verbatim.
type Route struct {
	Exchange string   `yaml:"exchange"`
	DexType  *uint8   `yaml:"dex_type"`
	Accounts []string `yaml:"accounts"`
	Ratio    uint8    `yaml:"ratio"`
}

type Expect struct {
	Error    string            `yaml:"error"`
	Balances map[string]uint64 `yaml:"balances"`
}

// LoadFile reads a scenario from disk.
func LoadFile(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a YAML scenario.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Router.Token == "" {
		return fmt.Errorf("scenario %q: router.token is required", f.Name)
	}
	if f.Swap.User == "" || f.Swap.Source == "" || f.Swap.Destination == "" {
		return fmt.Errorf("scenario %q: swap.user, swap.source and swap.destination are required", f.Name)
	}
	if len(f.Swap.Routes) == 0 {
		return fmt.Errorf("scenario %q: swap needs at least one route", f.Name)
	}
	for i, r := range f.Swap.Routes {
		if (r.Exchange == "") == (r.DexType == nil) {
			return fmt.Errorf("scenario %q: route %d needs exactly one of exchange or dex_type", f.Name, i)
		}
	}
	for _, ex := range f.Exchanges {
		if ex.Denominator == 0 {
			return fmt.Errorf("scenario %q: exchange %s has zero denominator", f.Name, ex.Name)
		}
	}
	return nil
}

// decodeData decodes raw account data; base64 is the default encoding.
func decodeData(data, encoding string) ([]byte, error) {
	switch encoding {
	case "", "base64":
		return base64.StdEncoding.DecodeString(data)
	case "base58":
		return base58.Decode(data)
	default:
		return nil, fmt.Errorf("unknown data encoding %q", encoding)
	}
}
