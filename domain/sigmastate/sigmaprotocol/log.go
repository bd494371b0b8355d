package sigmaprotocol

import (
	"github.com/thub1271/sigmastate-interpreter/infrastructure/logger"
)

var log = logger.RegisterSubSystem("SGMP")
