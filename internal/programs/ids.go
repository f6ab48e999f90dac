package programs

import (
	"zkl/internal/bridge"
	"zkl/internal/domain"
	"zkl/internal/ledger"
)

// IDs are the program addresses deployed on one ledger.
type IDs struct {
	Registry domain.Address
	Inbox    domain.Address
	Bridge   domain.Address
}

// DeployAll installs the three programs on m. guardians holds, per emitter
// chain, the set whose signatures the bridge accepts on incoming VAAs.
func DeployAll(m *ledger.Memory, ids IDs, guardians bridge.GuardianSets) {
	m.Deploy(ids.Registry, &Registry{})
	m.Deploy(ids.Inbox, &Inbox{RegistryProgram: ids.Registry})
	m.Deploy(ids.Bridge, &Bridge{Guardians: guardians})
}
