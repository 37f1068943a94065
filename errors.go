/*
 * errors.go, part of goFFData.
 *
 *
 * Copyright 2023 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * goFFData is currently developed at the Universidad de Santiago de Chile
 * (USACH)
 *
 */

package ffdata

import "fmt"

//CError is the concrete error type of the ffdata package. It fulfills
//the Error interface.
type CError struct {
	msg  string
	deco []string
}

func (err *CError) Error() string { return err.msg }

//Decorate adds new information to the error and returns the current
//decoration slice.
func (err *CError) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

//cError builds a CError with a formatted message, decorated with the
//caller's name.
func cError(caller, format string, a ...interface{}) *CError {
	err := new(CError)
	err.msg = fmt.Sprintf(format, a...)
	err.Decorate(caller)
	return err
}

//errDecorate asserts that err implements Error and decorates it with the
//caller's name before returning it. Plain errors get wrapped in a CError.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		return &CError{msg: err.Error(), deco: []string{caller}}
	}
	err2.Decorate(caller)
	return err2
}
