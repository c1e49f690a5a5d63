package main

import "fmt"

var handlers []func()

func twice(f func()) {
	f() // @Multi(twice)
	f() // @Multi(twice)
}

func retry(f func() error, n int) error {
	var err error
	for i := 0; i < n; i++ {
		if err = f(); err == nil { // @Multi(retry)
			return nil
		}
	}
	return err
}

func register(f func()) {
	handlers = append(handlers, f)
	f()
	f()
}

func callback(done func(string)) {
	if len(handlers) > 0 {
		done("some") // @Multi(notify)
	} else {
		done("none") // @Multi(notify)
	}
}

func notify(done func(string)) {
	done("start") // @Multi(notify)
	callback(done)
}

func ignored(f func()) {
	f() //invocount:ignore
	f() //invocount:ignore
}

func main() {
	twice(func() { fmt.Println("hi") })
	_ = retry(func() error { return nil }, 3)
	register(func() {})
	notify(func(s string) { fmt.Println(s) })
	ignored(func() {})
}
