/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dbstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"
	"net"

	"github.com/suparena/persistence/errors"
)

// ClassifyNetwork recognizes context, connection and network failures
// shared by every backend. Anything else is KindUnexpected.
func ClassifyNetwork(err error) errors.Kind {
	switch {
	case stderrors.Is(err, context.Canceled):
		return errors.KindCanceled
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.KindTimeout
	case stderrors.Is(err, driver.ErrBadConn), stderrors.Is(err, sql.ErrConnDone):
		return errors.KindConnectivity
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.KindTimeout
		}
		return errors.KindConnectivity
	}
	return errors.KindUnexpected
}
