package deployments

import "errors"

var ErrNotFound = errors.New("not found")
