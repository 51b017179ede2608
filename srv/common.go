package srv

import (
	"fmt"
	"net/rpc"
	"time"

	log "github.com/golang/glog"
)

// RpcClient represent rpc.Client and the address.  This makes it easy
// to display RPC connections in logs or expvars.
type RpcClient struct {
	*rpc.Client
	Name string
}

// String is required by interface Stringer.
func (r *RpcClient) String() string {
	return r.Name
}

// retryInterval is the pause between two attempts of dialing.
var retryInterval = time.Second

// dial connects to the HTTP RPC server on addr, trying at most
// retry+1 times.
func dial(addr string, retry int) (*RpcClient, error) {
	var e error
	for i := 0; i <= retry; i++ {
		var cl *rpc.Client
		if cl, e = rpc.DialHTTP("tcp", addr); e == nil {
			return &RpcClient{cl, addr}, nil
		}
		log.V(1).Infof("Dial %s attempt %d: %v", addr, i, e)
		if i < retry {
			time.Sleep(retryInterval)
		}
	}
	return nil, fmt.Errorf("dial %s: %v", addr, e)
}
