package main

/*
#include <stdatomic.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

// Thread ids are handed out from a counter and never reused, unlike
// pthread_self values.
static atomic_uint_fast64_t hl_next_id;
static _Thread_local uint64_t hl_id;
static atomic_size_t hl_dead_count;

#ifndef _WIN32
#include <pthread.h>

static pthread_key_t hl_key;
static pthread_once_t hl_key_once = PTHREAD_ONCE_INIT;
static pthread_mutex_t hl_dead_mu = PTHREAD_MUTEX_INITIALIZER;
static uint64_t *hl_dead;
static size_t hl_dead_len, hl_dead_cap;

// Runs on thread exit. Only queues the id; Go drops the sink on the next call.
static void hl_thread_exit(void *v) {
	uint64_t id = (uint64_t)(uintptr_t)v;
	pthread_mutex_lock(&hl_dead_mu);
	if (hl_dead_len == hl_dead_cap) {
		size_t cap = hl_dead_cap ? hl_dead_cap * 2 : 16;
		uint64_t *p = realloc(hl_dead, cap * sizeof *p);
		if (p == NULL) {
			pthread_mutex_unlock(&hl_dead_mu);
			return;
		}
		hl_dead = p;
		hl_dead_cap = cap;
	}
	hl_dead[hl_dead_len++] = id;
	atomic_store(&hl_dead_count, hl_dead_len);
	pthread_mutex_unlock(&hl_dead_mu);
}

static void hl_make_key(void) { pthread_key_create(&hl_key, hl_thread_exit); }
#endif

// hl_thread_id returns the id of the calling thread and stores the number of
// exited threads waiting to be reaped in *dead.
static uint64_t hl_thread_id(size_t *dead) {
	if (hl_id == 0) {
		hl_id = atomic_fetch_add(&hl_next_id, 1) + 1;
#ifndef _WIN32
		pthread_once(&hl_key_once, hl_make_key);
		pthread_setspecific(hl_key, (void *)(uintptr_t)hl_id);
#endif
	}
	*dead = atomic_load(&hl_dead_count);
	return hl_id;
}

// hl_take_dead moves up to n exited thread ids into out.
static size_t hl_take_dead(uint64_t *out, size_t n) {
#ifdef _WIN32
	return 0;
#else
	pthread_mutex_lock(&hl_dead_mu);
	size_t k = hl_dead_len < n ? hl_dead_len : n;
	hl_dead_len -= k;
	memcpy(out, hl_dead + hl_dead_len, k * sizeof *out);
	atomic_store(&hl_dead_count, hl_dead_len);
	pthread_mutex_unlock(&hl_dead_mu);
	return k;
#endif
}
*/
import "C"

import "github.com/codefionn/hlbridge/internal/logger"

// cgo locks the goroutine of an exported call to the calling C thread.
func tid() uint64 {
	var dead C.size_t
	id := uint64(C.hl_thread_id(&dead))
	if dead > 0 {
		reapExitedThreads()
	}
	return id
}

// reapExitedThreads drops the error sinks of threads that have exited.
func reapExitedThreads() {
	var ids [64]C.uint64_t
	for {
		n := int(C.hl_take_dead(&ids[0], C.size_t(len(ids))))
		for _, id := range ids[:n] {
			lib.ReleaseThreadErrors(uint64(id))
		}
		if n > 0 {
			logger.Debug("Dropped error state of %d exited threads", n)
		}
		if n < len(ids) {
			return
		}
	}
}
