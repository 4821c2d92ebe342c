// Package host tracks objects handed to a scripting host.
//
// A scripting host sees reflection proxies as opaque userdata. Each proxy is
// registered in a Table under a Handle; when the host is done with it, the
// binding collects the handle and the table runs the value's Finalize method.
// A handle can be collected only once, so the finalizer never runs twice:
//
//	table := host.NewTable()
//	h := table.Insert(classInfo, proxy)
//
//	v, ok := table.GetTyped(h, classInfo)
//
//	table.Collect(h) // proxy.Finalize() runs here
//	table.Collect(h) // false, nothing happens
//
// # Observers
//
// Observers see every creation and finalization:
//
//	stop := table.Subscribe(host.ObserverFunc(func(e host.Event) {
//	    log.Printf("%s %d", e.Type, e.Handle)
//	}))
//	defer stop()
//
// # Shutdown
//
// Close finalizes every object still registered and rejects further inserts.
// Bindings call it when the host state is torn down.
package host
