package tx

// Type identifies a transaction kind.
type Type uint16

const (
	TypeInvalid Type = iota

	TypePayment

	TypeTokenCreate
	TypeTokenMint
	TypeTokenBurn
	TypeTokenTransfer
	TypeTokenApprove
	TypeTokenTransferFrom

	TypeNFTMint
	TypeNFTBurn
	TypeNFTTransfer
	TypeNFTApprove

	TypeSemiMint
	TypeSemiBurn
	TypeSemiTransfer

	TypeEscrowCreate
	TypeEscrowFinish
	TypeEscrowCancel

	TypeAuctionCreate
	TypeAuctionStart
	TypeAuctionBid
	TypeAuctionWithdraw
	TypeAuctionEnd
	TypeAuctionBuy

	TypeWalletCreate
	TypeWalletDeposit
	TypeWalletSubmit
	TypeWalletConfirm
	TypeWalletRevoke
	TypeWalletExecute

	TypeChannelCreate
	TypeChannelChallenge
	TypeChannelWithdraw

	TypeTimelockQueue
	TypeTimelockExecute
	TypeTimelockCancel

	TypeCampaignLaunch
	TypeCampaignPledge
	TypeCampaignCancel
	TypeCampaignClaim
	TypeCampaignRefund
)

var typeNames = map[Type]string{
	TypePayment:           "Payment",
	TypeTokenCreate:       "TokenCreate",
	TypeTokenMint:         "TokenMint",
	TypeTokenBurn:         "TokenBurn",
	TypeTokenTransfer:     "TokenTransfer",
	TypeTokenApprove:      "TokenApprove",
	TypeTokenTransferFrom: "TokenTransferFrom",
	TypeNFTMint:           "NFTMint",
	TypeNFTBurn:           "NFTBurn",
	TypeNFTTransfer:       "NFTTransfer",
	TypeNFTApprove:        "NFTApprove",
	TypeSemiMint:          "SemiMint",
	TypeSemiBurn:          "SemiBurn",
	TypeSemiTransfer:      "SemiTransfer",
	TypeEscrowCreate:      "EscrowCreate",
	TypeEscrowFinish:      "EscrowFinish",
	TypeEscrowCancel:      "EscrowCancel",
	TypeAuctionCreate:     "AuctionCreate",
	TypeAuctionStart:      "AuctionStart",
	TypeAuctionBid:        "AuctionBid",
	TypeAuctionWithdraw:   "AuctionWithdraw",
	TypeAuctionEnd:        "AuctionEnd",
	TypeAuctionBuy:        "AuctionBuy",
	TypeWalletCreate:      "WalletCreate",
	TypeWalletDeposit:     "WalletDeposit",
	TypeWalletSubmit:      "WalletSubmit",
	TypeWalletConfirm:     "WalletConfirm",
	TypeWalletRevoke:      "WalletRevoke",
	TypeWalletExecute:     "WalletExecute",
	TypeChannelCreate:     "ChannelCreate",
	TypeChannelChallenge:  "ChannelChallenge",
	TypeChannelWithdraw:   "ChannelWithdraw",
	TypeTimelockQueue:     "TimelockQueue",
	TypeTimelockExecute:   "TimelockExecute",
	TypeTimelockCancel:    "TimelockCancel",
	TypeCampaignLaunch:    "CampaignLaunch",
	TypeCampaignPledge:    "CampaignPledge",
	TypeCampaignCancel:    "CampaignCancel",
	TypeCampaignClaim:     "CampaignClaim",
	TypeCampaignRefund:    "CampaignRefund",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Invalid"
}

// TypeFromName resolves a transaction type name. Returns TypeInvalid for
// unknown names.
func TypeFromName(name string) Type {
	return typesByName[name]
}
