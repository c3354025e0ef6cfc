package metadata

import (
	"sort"

	"github.com/sentioxyz/aptos-core/internal/ledger"
)

// PackageIndex answers which account publishes a package and which package
// holds a module, over the registries read during one pass.
type PackageIndex struct {
	accounts map[string]string
	packages map[string]string
}

// NewPackageIndex indexes registries keyed by account. When two accounts
// publish packages of the same name the lowest account address wins.
func NewPackageIndex(registries map[string]*ledger.PackageRegistry) *PackageIndex {
	idx := &PackageIndex{
		accounts: make(map[string]string),
		packages: make(map[string]string),
	}
	accounts := make([]string, 0, len(registries))
	for a := range registries {
		accounts = append(accounts, a)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		reg := registries[account]
		if reg == nil {
			continue
		}
		for _, pkg := range reg.Packages {
			if _, ok := idx.accounts[pkg.Name]; !ok {
				idx.accounts[pkg.Name] = account
			}
			for _, m := range pkg.Modules {
				idx.packages[moduleKey(account, m.Name)] = pkg.Name
			}
		}
	}
	return idx
}

func (i *PackageIndex) Account(pkg string) (string, bool) {
	a, ok := i.accounts[pkg]
	return a, ok
}

func (i *PackageIndex) Package(account, module string) (string, bool) {
	p, ok := i.packages[moduleKey(account, module)]
	return p, ok
}
