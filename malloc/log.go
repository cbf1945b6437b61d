/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package malloc

import "github.com/bnclabs/golog"

// Logger is the diagnostic sink of a heap. golog's Logger satisfies it.
type Logger interface {
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Tracef(format string, v ...interface{})
}

// DefaultLogger routes diagnostics to golog, configure it with
// log.SetLogger.
func DefaultLogger() Logger {
	return gologger{}
}

type gologger struct{}

func (gologger) Errorf(format string, v ...interface{}) {
	log.Errorf(format, v...)
}

func (gologger) Warnf(format string, v ...interface{}) {
	log.Warnf(format, v...)
}

func (gologger) Infof(format string, v ...interface{}) {
	log.Infof(format, v...)
}

func (gologger) Debugf(format string, v ...interface{}) {
	log.Debugf(format, v...)
}

func (gologger) Tracef(format string, v ...interface{}) {
	log.Tracef(format, v...)
}

type nolog struct{}

func (nolog) Errorf(format string, v ...interface{}) {}
func (nolog) Warnf(format string, v ...interface{})  {}
func (nolog) Infof(format string, v ...interface{})  {}
func (nolog) Debugf(format string, v ...interface{}) {}
func (nolog) Tracef(format string, v ...interface{}) {}
