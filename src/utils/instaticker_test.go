package utils

import (
	"testing"
	"time"
)

func TestInstaTicker(t *testing.T) {
	t.Run("ticks immediately", func(t *testing.T) {
		it := NewInstaTicker(time.Hour)
		select {
		case <-it.C:
		case <-time.After(time.Second):
			t.Fatal("expected a tick right away")
		}
		it.Stop()
	})
	t.Run("keeps ticking", func(t *testing.T) {
		it := NewInstaTicker(time.Millisecond * 10)
		for i := 0; i < 3; i++ {
			select {
			case <-it.C:
			case <-time.After(time.Second):
				t.Fatal("ticker went quiet")
			}
		}
		it.Stop()
	})
	t.Run("stop", func(t *testing.T) {
		t.Run("never consumed a tick", func(t *testing.T) {
			it := NewInstaTicker(time.Second * 100)
			it.Stop()
		})
		t.Run("consumed initial tick", func(t *testing.T) {
			it := NewInstaTicker(time.Millisecond * 50)
			<-it.C
			it.Stop()
		})
		t.Run("consumed one ticker tick", func(t *testing.T) {
			it := NewInstaTicker(time.Millisecond * 50)
			<-it.C
			<-it.C
			it.Stop()
		})
	})
}
