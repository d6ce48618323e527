// Package authz defines the read/write access policies for each entity
// kind. A policy is evaluated against the caller and the ownership facts of
// the resource; handlers and services never test is-admin or owner ids
// directly.
package authz

// Caller identifies the requesting user. The zero value is anonymous.
type Caller struct {
	ID            uint
	Username      string
	IsAdmin       bool
	Authenticated bool
}

// Resource carries the ownership facts a policy may consult.
type Resource struct {
	// OwnerID is the direct owner; nil for unowned legacy rows.
	OwnerID *uint
	// AuctionOwnerID is the owner of the enclosing auction, set for bids.
	AuctionOwnerID *uint
}

// Owned builds a Resource for an entity owned directly by userID.
func Owned(userID uint) Resource {
	return Resource{OwnerID: &userID}
}

// Policy is the read/write capability for one entity kind.
type Policy struct {
	read  func(Caller, Resource) bool
	write func(Caller, Resource) bool
}

// CanRead reports whether the caller may read the resource.
func (p Policy) CanRead(c Caller, r Resource) bool { return p.read(c, r) }

// CanWrite reports whether the caller may create, modify or delete the
// resource.
func (p Policy) CanWrite(c Caller, r Resource) bool { return p.write(c, r) }

func anyone(Caller, Resource) bool { return true }

func isAdmin(c Caller) bool { return c.Authenticated && c.IsAdmin }

func ownerMatches(c Caller, owner *uint) bool {
	return c.Authenticated && owner != nil && *owner == c.ID
}

// OwnerOrAdmin guards auctions, ratings and comments: anyone may read, only
// the owning user or an admin may write.
var OwnerOrAdmin = Policy{
	read: anyone,
	write: func(c Caller, r Resource) bool {
		return isAdmin(c) || ownerMatches(c, r.OwnerID)
	},
}

// AdminOrReadOnly guards categories: reads are public, writes are reserved
// for admins.
var AdminOrReadOnly = Policy{
	read:  anyone,
	write: func(c Caller, _ Resource) bool { return isAdmin(c) },
}

// AuthenticatedOrReadOnly guards collection creation: anyone may list, any
// authenticated user may create.
var AuthenticatedOrReadOnly = Policy{
	read:  anyone,
	write: func(c Caller, _ Resource) bool { return c.Authenticated },
}

// BidOwnerOrAuctionOwnerOrAdmin guards individual bids: the bidder, the
// owner of the auction the bid targets, and admins may write.
var BidOwnerOrAuctionOwnerOrAdmin = Policy{
	read: anyone,
	write: func(c Caller, r Resource) bool {
		return isAdmin(c) || ownerMatches(c, r.OwnerID) || ownerMatches(c, r.AuctionOwnerID)
	},
}

// AdminOnly guards the user administration area, reads included.
var AdminOnly = Policy{
	read:  func(c Caller, _ Resource) bool { return isAdmin(c) },
	write: func(c Caller, _ Resource) bool { return isAdmin(c) },
}
