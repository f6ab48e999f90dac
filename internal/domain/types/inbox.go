package types

// MaxInboxMessages is the fixed record capacity of one inbox account.
// A full inbox is continued at the next index.
const MaxInboxMessages = 100

// InboxAccount is the decoded state of a recipient's inbox.
type InboxAccount struct {
	Address      Address
	RecipientKey EncodedKey
	Wallet       Address
	Messages     []FileTxRecord
	Bump         uint8
}

// Contains reports whether a record with link is already present.
func (a InboxAccount) Contains(link string) bool {
	for _, m := range a.Messages {
		if m.EncryptedLink == link {
			return true
		}
	}
	return false
}

// Full reports whether another append would exceed capacity.
func (a InboxAccount) Full() bool { return len(a.Messages) >= MaxInboxMessages }
