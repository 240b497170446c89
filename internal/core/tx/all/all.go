// Package all registers every transaction type. Import it for side
// effects anywhere the full transactor set is needed.
package all

import (
	_ "github.com/settleng/goledgerd/internal/core/tx/auction"
	_ "github.com/settleng/goledgerd/internal/core/tx/crowdfund"
	_ "github.com/settleng/goledgerd/internal/core/tx/escrow"
	_ "github.com/settleng/goledgerd/internal/core/tx/multisig"
	_ "github.com/settleng/goledgerd/internal/core/tx/paychan"
	_ "github.com/settleng/goledgerd/internal/core/tx/payment"
	_ "github.com/settleng/goledgerd/internal/core/tx/timelock"
	_ "github.com/settleng/goledgerd/internal/core/tx/token"
)
