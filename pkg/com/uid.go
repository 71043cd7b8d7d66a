package com

import "github.com/rs/xid"

// Uid is a sortable unique id of sessions.
type Uid struct {
	xid.ID
}

func NewUid() Uid { return Uid{xid.New()} }

// Short returns a shortened id for logs, i.e. cfv.6bg.
func (u Uid) Short() string { s := u.String(); return s[:3] + "." + s[len(s)-3:] }
